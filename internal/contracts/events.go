package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// StakedEvent is Staked(user indexed, stakeIndex indexed, planId, amount, startTime, referrer indexed).
type StakedEvent struct {
	User       common.Address
	StakeIndex *big.Int
	PlanID     *big.Int `abi:"planId"`
	Amount     *big.Int `abi:"amount"`
	StartTime  *big.Int `abi:"startTime"`
	Referrer   common.Address

	Raw types.Log
}

// StakedTopic is the topic0 hash of the Staked event.
func StakedTopic() common.Hash {
	return StakingABI.Events[EventStaked].ID
}

// StakedByReferrerTopics builds a topic filter matching Staked events whose
// referrer equals the given address.
func StakedByReferrerTopics(referrer common.Address) [][]common.Hash {
	return [][]common.Hash{
		{StakedTopic()},
		nil,
		nil,
		{common.BytesToHash(referrer.Bytes())},
	}
}

// ParseStaked decodes a raw Staked log.
func ParseStaked(log types.Log) (*StakedEvent, error) {
	event := StakingABI.Events[EventStaked]
	if len(log.Topics) == 0 || log.Topics[0] != event.ID {
		return nil, fmt.Errorf("log %s:%d is not a %s event", log.TxHash.Hex(), log.Index, EventStaked)
	}

	out := new(StakedEvent)
	if len(log.Data) > 0 {
		if err := StakingABI.UnpackIntoInterface(out, EventStaked, log.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack %s data: %w", EventStaked, err)
		}
	}

	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopics(out, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse %s topics: %w", EventStaked, err)
	}

	out.Raw = log
	return out, nil
}
