package rpc

// Method name constants for the calls Brane's client facade, gas
// strategy, and transports issue, trimmed to the methods this SDK
// actually calls rather than the full execution-apis surface.
const (
	MethodChainID                   = "eth_chainId"
	MethodBlockNumber                = "eth_blockNumber"
	MethodGetBalance                 = "eth_getBalance"
	MethodGetTransactionCount        = "eth_getTransactionCount"
	MethodGetCode                    = "eth_getCode"
	MethodGetStorageAt               = "eth_getStorageAt"
	MethodCall                       = "eth_call"
	MethodEstimateGas                = "eth_estimateGas"
	MethodGasPrice                   = "eth_gasPrice"
	MethodMaxPriorityFeePerGas       = "eth_maxPriorityFeePerGas"
	MethodFeeHistory                 = "eth_feeHistory"
	MethodSendRawTransaction         = "eth_sendRawTransaction"
	MethodGetTransactionReceipt      = "eth_getTransactionReceipt"
	MethodGetTransactionByHash       = "eth_getTransactionByHash"
	MethodGetLogs                    = "eth_getLogs"
	MethodSubscribe                  = "eth_subscribe"
	MethodUnsubscribe                = "eth_unsubscribe"
	MethodSubscriptionNotification   = "eth_subscription"

	// Test-node-only methods (Anvil/Hardhat/Ganache), used by client's
	// Tester capability.
	MethodEvmSnapshot       = "evm_snapshot"
	MethodEvmRevert         = "evm_revert"
	MethodEvmMine           = "evm_mine"
	MethodEvmIncreaseTime   = "evm_increaseTime"
	MethodEvmSetNextBlockTs = "evm_setNextBlockTimestamp"
	MethodSetBalance        = "anvil_setBalance"
	MethodSetNonce          = "anvil_setNonce"
	MethodSetCode           = "anvil_setCode"
	MethodSetStorageAt      = "anvil_setStorageAt"
	MethodImpersonate       = "anvil_impersonateAccount"
	MethodStopImpersonate   = "anvil_stopImpersonatingAccount"
	MethodDumpState         = "anvil_dumpState"
	MethodLoadState         = "anvil_loadState"
	MethodReset             = "anvil_reset"
	MethodSetAutomine       = "evm_setAutomine"
)
