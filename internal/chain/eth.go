package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"runera-client/internal/api"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Subset of the RuneraProfile contract the client calls.
const profileABIJSON = `[
  {"type":"function","name":"hasProfile","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getProfile","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"xp","type":"uint256"},
     {"name":"level","type":"uint256"},
     {"name":"runCount","type":"uint256"},
     {"name":"achievementCount","type":"uint256"},
     {"name":"totalDistanceMeters","type":"uint256"},
     {"name":"longestStreakDays","type":"uint256"},
     {"name":"lastUpdated","type":"uint256"}]}]},
  {"type":"function","name":"updateStats","stateMutability":"nonpayable",
   "inputs":[
     {"name":"user","type":"address"},
     {"name":"stats","type":"tuple","components":[
       {"name":"xp","type":"uint256"},
       {"name":"level","type":"uint256"},
       {"name":"runCount","type":"uint256"},
       {"name":"achievementCount","type":"uint256"},
       {"name":"totalDistanceMeters","type":"uint256"},
       {"name":"longestStreakDays","type":"uint256"},
       {"name":"lastUpdated","type":"uint256"}]},
     {"name":"deadline","type":"uint256"},
     {"name":"signature","type":"bytes"}],
   "outputs":[]}
]`

var profileABI = mustParseABI(profileABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

type profileTuple struct {
	Xp                  *big.Int
	Level               *big.Int
	RunCount            *big.Int
	AchievementCount    *big.Int
	TotalDistanceMeters *big.Int
	LongestStreakDays   *big.Int
	LastUpdated         *big.Int
}

// EthClient talks to the profile contract over JSON-RPC.
type EthClient struct {
	rpc      *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int
}

// NewEthClient dials the node. requiredChainID is the network the
// signed stats updates are valid on.
func NewEthClient(rpcURL, contractAddr string, requiredChainID int64, key *ecdsa.PrivateKey) (*EthClient, error) {
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(common.HexToAddress(contractAddr), profileABI, rpc, rpc, rpc)
	return &EthClient{
		rpc:      rpc,
		contract: contract,
		key:      key,
		chainID:  big.NewInt(requiredChainID),
	}, nil
}

// VerifyNetwork checks the node's chain against the required one. A
// headless client cannot switch networks for the user, so a mismatch
// is terminal for the current attempt.
func (c *EthClient) VerifyNetwork(ctx context.Context) error {
	id, err := c.rpc.ChainID(ctx)
	if err != nil {
		return err
	}
	if id.Cmp(c.chainID) != 0 {
		return fmt.Errorf("%w: node on %s, need %s", ErrWrongNetwork, id, c.chainID)
	}
	return nil
}

func (c *EthClient) HasProfile(ctx context.Context, address string) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "hasProfile", common.HexToAddress(address))
	if err != nil {
		return false, Classify(err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *EthClient) GetProfile(ctx context.Context, address string) (api.ProfileStats, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getProfile", common.HexToAddress(address))
	if err != nil {
		return api.ProfileStats{}, Classify(err)
	}
	tuple := *abi.ConvertType(out[0], new(profileTuple)).(*profileTuple)
	return api.ProfileStats{
		XP:                  tuple.Xp.Int64(),
		Level:               tuple.Level.Int64(),
		RunCount:            tuple.RunCount.Int64(),
		AchievementCount:    tuple.AchievementCount.Int64(),
		TotalDistanceMeters: tuple.TotalDistanceMeters.Int64(),
		LongestStreakDays:   tuple.LongestStreakDays.Int64(),
		LastUpdated:         tuple.LastUpdated.Int64(),
	}, nil
}

func (c *EthClient) UpdateStats(ctx context.Context, address string, stats api.ProfileStats, deadline int64, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", ErrInvalidSignature
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return "", err
	}
	opts.Context = ctx

	tx, err := c.contract.Transact(opts, "updateStats",
		common.HexToAddress(address),
		profileTuple{
			Xp:                  big.NewInt(stats.XP),
			Level:               big.NewInt(stats.Level),
			RunCount:            big.NewInt(stats.RunCount),
			AchievementCount:    big.NewInt(stats.AchievementCount),
			TotalDistanceMeters: big.NewInt(stats.TotalDistanceMeters),
			LongestStreakDays:   big.NewInt(stats.LongestStreakDays),
			LastUpdated:         big.NewInt(stats.LastUpdated),
		},
		big.NewInt(deadline),
		sig,
	)
	if err != nil {
		return "", Classify(err)
	}

	receipt, err := bind.WaitMined(ctx, c.rpc, tx)
	if err != nil {
		return tx.Hash().Hex(), Classify(err)
	}
	if receipt.Status == 0 {
		return tx.Hash().Hex(), fmt.Errorf("stats update transaction reverted: %s", tx.Hash().Hex())
	}
	return tx.Hash().Hex(), nil
}
