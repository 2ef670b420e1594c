package contract

// ERC721 is the SimpleERC721Batch interface. Token ids start at 1 and are
// minted sequentially by ownerMintBatch.
//
// Function selectors:
//
//	totalSupply()               → 0x18160ddd
//	ownerOf(uint256)            → 0x6352211e
//	transferFrom(a,a,u256)      → 0x23b872dd
//	ownerMintBatch(uint256)     → computed from the ABI
var ERC721 = RegisterBuiltin("erc721", "ERC-721 Collection", "SimpleERC721Batch: owner-only sequential batch minting.", erc721ABIJSON)

const erc721ABIJSON = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[
    {"name":"_n","type":"string"},{"name":"_s","type":"string"},{"name":"_max","type":"uint256"}]},
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"_o","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[
    {"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"ownerMintBatch","stateMutability":"nonpayable","inputs":[{"name":"count","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"Transfer","anonymous":false,"inputs":[
    {"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},
    {"name":"tokenId","type":"uint256","indexed":true}]}
]`
