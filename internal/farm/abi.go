package farm

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Methods the reader needs from the reward contract.
const (
	MethodPoolLength      = "poolLength"
	MethodTotalAllocPoint = "totalAllocPoint"
	MethodRewardPerSecond = "latestPeriodCakePerSecond"
	MethodPoolInfo        = "poolInfo"
)

const masterChefV3ABIJSON = `[
  {
    "inputs": [],
    "name": "poolLength",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "totalAllocPoint",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "latestPeriodCakePerSecond",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "name": "poolInfo",
    "outputs": [
      {"internalType": "uint256", "name": "allocPoint", "type": "uint256"},
      {"internalType": "contract IPancakeV3Pool", "name": "v3Pool", "type": "address"},
      {"internalType": "address", "name": "token0", "type": "address"},
      {"internalType": "address", "name": "token1", "type": "address"},
      {"internalType": "uint24", "name": "fee", "type": "uint24"},
      {"internalType": "uint256", "name": "totalLiquidity", "type": "uint256"},
      {"internalType": "uint256", "name": "totalBoostLiquidity", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	masterChefV3ABI     abi.ABI
	masterChefV3ABIOnce sync.Once
	masterChefV3ABIErr  error
)

// MasterChefV3ABI returns the parsed MasterChef v3 ABI.
func MasterChefV3ABI() (abi.ABI, error) {
	masterChefV3ABIOnce.Do(func() {
		masterChefV3ABI, masterChefV3ABIErr = abi.JSON(strings.NewReader(masterChefV3ABIJSON))
	})
	return masterChefV3ABI, masterChefV3ABIErr
}
