package contract

// ArbSys is the Arbitrum system precompile used for L2 -> L1 withdrawals.
//
//	withdrawEth(address) → 0x25e16063
var ArbSys = RegisterBuiltin("arbsys", "ArbSys Precompile", "L2 -> L1 native withdrawal.", arbsysABIJSON)

const arbsysABIJSON = `[
  {"type":"function","name":"withdrawEth","stateMutability":"payable",
   "inputs":[{"name":"destination","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`
