package contracts

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Function and event names used across the data layer.
const (
	MethodTryAggregate = "tryAggregate"

	MethodGetActiveStakingPlans         = "getActiveStakingPlans"
	MethodGetStakingPlan                = "getStakingPlan"
	MethodGetStakingPlanCount           = "getStakingPlanCount"
	MethodGetContractTokenBalance       = "getContractTokenBalance"
	MethodGetTotalUniqueStakers         = "getTotalUniqueStakers"
	MethodReferralCommissionBasisPoints = "referralCommissionBasisPoints"
	MethodGetUserTotalStakedAmount      = "getUserTotalStakedAmount"
	MethodGetReferrerTotalEarnings      = "getReferrerTotalEarnings"
	MethodGetAllUserStakes              = "getAllUserStakes"
	MethodGetDirectReferralCount        = "getDirectReferralCount"
	MethodCalculatePendingReward        = "calculatePendingReward"
	MethodGetClaimableReferralBonuses   = "getClaimableReferralBonuses"
	MethodOwner                         = "owner"
	MethodStake                         = "stake"
	MethodUnstake                       = "unstake"
	MethodClaimRewards                  = "claimRewards"
	MethodClaimReferralBonus            = "claimReferralBonus"
	MethodAddStakingPlan                = "addStakingPlan"
	MethodUpdateStakingPlan             = "updateStakingPlan"
	MethodSetReferralCommission         = "setReferralCommission"

	MethodGetActivePackages       = "getActivePackages"
	MethodGetUserStakeBasic       = "getUserStakeBasic"
	MethodGetUserStakeDuration    = "getUserStakeDuration"
	MethodGetUserStakeBonus       = "getUserStakeBonus"
	MethodGetContractStats        = "getContractStats"
	MethodGetReferralStats        = "getReferralStats"
	MethodCalculatePendingRewards = "calculatePendingRewards"
	MethodUsdtToken               = "usdtToken"
	MethodClaimRestakeBonus       = "claimRestakeBonus"
	MethodClaimClosingBonus       = "claimClosingBonus"
	MethodCompleteStake           = "completeStake"
	MethodCreatePackage           = "createPackage"
	MethodUpdatePackage           = "updatePackage"
	MethodWithdrawUsdt            = "withdrawUsdt"

	MethodTotalSupply = "totalSupply"
	MethodBalanceOf   = "balanceOf"
	MethodAllowance   = "allowance"
	MethodApprove     = "approve"
	MethodDecimals    = "decimals"

	MethodGetReserves   = "getReserves"
	MethodToken0        = "token0"
	MethodToken1        = "token1"
	MethodGetAmountsOut = "getAmountsOut"

	EventStaked               = "Staked"
	EventReferralBonusClaimed = "ReferralBonusClaimed"
)

const multicall3ABIJSON = `[
{"type":"function","name":"tryAggregate","stateMutability":"payable",
 "inputs":[{"name":"requireSuccess","type":"bool"},
  {"name":"calls","type":"tuple[]","internalType":"struct Multicall3.Call[]","components":[
   {"name":"target","type":"address"},{"name":"callData","type":"bytes"}]}],
 "outputs":[{"name":"returnData","type":"tuple[]","internalType":"struct Multicall3.Result[]","components":[
   {"name":"success","type":"bool"},{"name":"returnData","type":"bytes"}]}]}
]`

const stakingABIJSON = `[
{"type":"function","name":"getActiveStakingPlans","stateMutability":"view","inputs":[],
 "outputs":[{"name":"","type":"tuple[]","internalType":"struct OneDreamStakingV3.StakingPlan[]","components":[
  {"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"apyBasisPoints","type":"uint256"},
  {"name":"lockDuration","type":"uint256"},{"name":"earlyUnstakeFeeBasisPoints","type":"uint256"},
  {"name":"minStakeAmount","type":"uint256"},{"name":"active","type":"bool"}]}]},
{"type":"function","name":"getStakingPlan","stateMutability":"view","inputs":[{"name":"planId","type":"uint256"}],
 "outputs":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"apyBasisPoints","type":"uint256"},
  {"name":"lockDuration","type":"uint256"},{"name":"earlyUnstakeFeeBasisPoints","type":"uint256"},
  {"name":"minStakeAmount","type":"uint256"},{"name":"active","type":"bool"}]},
{"type":"function","name":"getStakingPlanCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getContractTokenBalance","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getTotalUniqueStakers","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"referralCommissionBasisPoints","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getUserTotalStakedAmount","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getReferrerTotalEarnings","stateMutability":"view","inputs":[{"name":"referrer","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getAllUserStakes","stateMutability":"view","inputs":[{"name":"user","type":"address"}],
 "outputs":[{"name":"","type":"tuple[]","internalType":"struct OneDreamStakingV3.Stake[]","components":[
  {"name":"planId","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"startTime","type":"uint256"},
  {"name":"lastClaimTime","type":"uint256"},{"name":"referrer","type":"address"},{"name":"referralBonusClaimed","type":"uint256"}]}]},
{"type":"function","name":"getDirectReferralCount","stateMutability":"view","inputs":[{"name":"referrer","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"calculatePendingReward","stateMutability":"view","inputs":[{"name":"user","type":"address"},{"name":"stakeIndex","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getClaimableReferralBonuses","stateMutability":"view","inputs":[{"name":"referrer","type":"address"}],
 "outputs":[{"name":"stakers","type":"address[]"},{"name":"stakeIndexes","type":"uint256[]"},{"name":"bonusAmounts","type":"uint256[]"}]},
{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"stake","stateMutability":"nonpayable","inputs":[{"name":"planId","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"referrer","type":"address"}],"outputs":[]},
{"type":"function","name":"unstake","stateMutability":"nonpayable","inputs":[{"name":"stakeIndex","type":"uint256"}],"outputs":[]},
{"type":"function","name":"claimRewards","stateMutability":"nonpayable","inputs":[{"name":"stakeIndex","type":"uint256"}],"outputs":[]},
{"type":"function","name":"claimReferralBonus","stateMutability":"nonpayable","inputs":[{"name":"staker","type":"address"},{"name":"stakeIndex","type":"uint256"}],"outputs":[]},
{"type":"function","name":"addStakingPlan","stateMutability":"nonpayable","inputs":[
  {"name":"name","type":"string"},{"name":"apyBasisPoints","type":"uint256"},{"name":"lockDuration","type":"uint256"},
  {"name":"earlyUnstakeFeeBasisPoints","type":"uint256"},{"name":"minStakeAmount","type":"uint256"},{"name":"active","type":"bool"}],"outputs":[]},
{"type":"function","name":"updateStakingPlan","stateMutability":"nonpayable","inputs":[
  {"name":"planId","type":"uint256"},{"name":"name","type":"string"},{"name":"apyBasisPoints","type":"uint256"},
  {"name":"lockDuration","type":"uint256"},{"name":"earlyUnstakeFeeBasisPoints","type":"uint256"},
  {"name":"minStakeAmount","type":"uint256"},{"name":"active","type":"bool"}],"outputs":[]},
{"type":"function","name":"setReferralCommission","stateMutability":"nonpayable","inputs":[{"name":"commissionBasisPoints","type":"uint256"}],"outputs":[]},
{"type":"event","name":"Staked","anonymous":false,"inputs":[
  {"name":"user","type":"address","indexed":true},{"name":"stakeIndex","type":"uint256","indexed":true},
  {"name":"planId","type":"uint256","indexed":false},{"name":"amount","type":"uint256","indexed":false},
  {"name":"startTime","type":"uint256","indexed":false},{"name":"referrer","type":"address","indexed":true}]},
{"type":"event","name":"ReferralBonusClaimed","anonymous":false,"inputs":[
  {"name":"referrer","type":"address","indexed":true},{"name":"staker","type":"address","indexed":true},
  {"name":"stakeIndex","type":"uint256","indexed":false},{"name":"amount","type":"uint256","indexed":false}]}
]`

const vaultABIJSON = `[
{"type":"function","name":"getActivePackages","stateMutability":"view","inputs":[],
 "outputs":[{"name":"","type":"tuple[]","internalType":"struct OneDreamVaultStaking.StakingPackage[]","components":[
  {"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"minAmount","type":"uint256"},
  {"name":"maxAmount","type":"uint256"},{"name":"dailyRateBasisPoints","type":"uint256"},
  {"name":"baseDurationDays","type":"uint256"},{"name":"referralBonusDays","type":"uint256"},
  {"name":"closingBonusBasisPoints","type":"uint256"},{"name":"active","type":"bool"}]}]},
{"type":"function","name":"getUserStakeBasic","stateMutability":"view","inputs":[{"name":"user","type":"address"}],
 "outputs":[{"name":"packageId","type":"uint256"},{"name":"usdtAmount","type":"uint256"},{"name":"startTime","type":"uint256"},
  {"name":"lastClaimTime","type":"uint256"},{"name":"isActive","type":"bool"}]},
{"type":"function","name":"getUserStakeDuration","stateMutability":"view","inputs":[{"name":"user","type":"address"}],
 "outputs":[{"name":"baseDurationDays","type":"uint256"},{"name":"referralCount","type":"uint256"},
  {"name":"totalDurationDays","type":"uint256"},{"name":"restakeCount","type":"uint256"}]},
{"type":"function","name":"getUserStakeBonus","stateMutability":"view","inputs":[{"name":"user","type":"address"}],
 "outputs":[{"name":"restakeBonus","type":"uint256"},{"name":"restakeBonusClaimed","type":"bool"},
  {"name":"closingBonus","type":"uint256"},{"name":"closingBonusClaimed","type":"bool"},{"name":"referrer","type":"address"}]},
{"type":"function","name":"getContractStats","stateMutability":"view","inputs":[],
 "outputs":[{"name":"_totalUsdtStaked","type":"uint256"},{"name":"_totalStakers","type":"uint256"},
  {"name":"_totalRewardsPaid","type":"uint256"},{"name":"usdtBalance","type":"uint256"},
  {"name":"oneDreamBalance","type":"uint256"},{"name":"currentOneDreamPrice","type":"uint256"}]},
{"type":"function","name":"getReferralStats","stateMutability":"view","inputs":[{"name":"user","type":"address"}],
 "outputs":[{"name":"totalReferralCount","type":"uint256"},{"name":"referredUsersList","type":"address[]"}]},
{"type":"function","name":"calculatePendingRewards","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"usdtToken","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"stake","stateMutability":"nonpayable","inputs":[{"name":"packageId","type":"uint256"},{"name":"usdtAmount","type":"uint256"},{"name":"referrer","type":"address"}],"outputs":[]},
{"type":"function","name":"claimRewards","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"claimRestakeBonus","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"claimClosingBonus","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"completeStake","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"createPackage","stateMutability":"nonpayable","inputs":[
  {"name":"name","type":"string"},{"name":"minAmount","type":"uint256"},{"name":"maxAmount","type":"uint256"},
  {"name":"dailyRateBasisPoints","type":"uint256"},{"name":"baseDurationDays","type":"uint256"},
  {"name":"referralBonusDays","type":"uint256"},{"name":"closingBonusBasisPoints","type":"uint256"}],"outputs":[]},
{"type":"function","name":"updatePackage","stateMutability":"nonpayable","inputs":[
  {"name":"packageId","type":"uint256"},{"name":"name","type":"string"},{"name":"minAmount","type":"uint256"},
  {"name":"maxAmount","type":"uint256"},{"name":"dailyRateBasisPoints","type":"uint256"},
  {"name":"baseDurationDays","type":"uint256"},{"name":"referralBonusDays","type":"uint256"},
  {"name":"closingBonusBasisPoints","type":"uint256"},{"name":"active","type":"bool"}],"outputs":[]},
{"type":"function","name":"withdrawUsdt","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]}
]`

const erc20ABIJSON = `[
{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

const pairABIJSON = `[
{"type":"function","name":"getReserves","stateMutability":"view","inputs":[],
 "outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}]},
{"type":"function","name":"token0","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"token1","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

const routerABIJSON = `[
{"type":"function","name":"getAmountsOut","stateMutability":"view",
 "inputs":[{"name":"amountIn","type":"uint256"},{"name":"path","type":"address[]"}],
 "outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

var (
	Multicall3ABI = mustParseABI("multicall3", multicall3ABIJSON)
	StakingABI    = mustParseABI("staking", stakingABIJSON)
	VaultABI      = mustParseABI("vault", vaultABIJSON)
	ERC20ABI      = mustParseABI("erc20", erc20ABIJSON)
	PairABI       = mustParseABI("pair", pairABIJSON)
	RouterABI     = mustParseABI("router", routerABIJSON)
)

func mustParseABI(name, raw string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Errorf("failed to parse %s abi: %w", name, err))
	}
	return &parsed
}
