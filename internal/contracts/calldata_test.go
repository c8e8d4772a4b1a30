package contracts

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestApproveCalldataSelector(t *testing.T) {
	token := NewERC20(nil, common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	spender := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	data, err := token.ApproveCalldata(spender, big.NewInt(1000))
	if err != nil {
		t.Fatalf("approve calldata: %v", err)
	}
	if got := hex.EncodeToString(data[:4]); got != "095ea7b3" {
		t.Fatalf("approve selector = %s, want 095ea7b3", got)
	}
	if len(data) != 4+32+32 {
		t.Fatalf("approve calldata length = %d, want 68", len(data))
	}
}

func TestTransferCalldataSelector(t *testing.T) {
	token := NewERC20(nil, common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	recipient := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")

	data, err := token.TransferCalldata(recipient, big.NewInt(42))
	if err != nil {
		t.Fatalf("transfer calldata: %v", err)
	}
	if got := hex.EncodeToString(data[:4]); got != "a9059cbb" {
		t.Fatalf("transfer selector = %s, want a9059cbb", got)
	}
}

func TestMintCalldataRoundTrip(t *testing.T) {
	manager := NewPositionManager(nil, common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88"))
	params := MintParams{
		Token0:         common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		Token1:         common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		Fee:            3000,
		TickLower:      -887220,
		TickUpper:      887220,
		Amount0Desired: big.NewInt(1_000_000),
		Amount1Desired: big.NewInt(2_000_000),
		Amount0Min:     big.NewInt(0),
		Amount1Min:     big.NewInt(0),
		Recipient:      common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"),
		Deadline:       big.NewInt(1_700_000_000),
	}

	data, err := manager.MintCalldata(params)
	if err != nil {
		t.Fatalf("mint calldata: %v", err)
	}

	parsed, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	method, ok := parsed.Methods["mint"]
	if !ok {
		t.Fatalf("mint method missing from abi")
	}
	if got := hex.EncodeToString(data[:4]); got != hex.EncodeToString(method.ID) {
		t.Fatalf("mint selector = %s, want %s", got, hex.EncodeToString(method.ID))
	}

	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack mint inputs: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("mint inputs arity = %d, want 1", len(values))
	}
}

func TestCollectCalldataUsesMaxUint128(t *testing.T) {
	manager := NewPositionManager(nil, common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88"))
	recipient := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")

	data, err := manager.CollectCalldata(big.NewInt(123456), recipient)
	if err != nil {
		t.Fatalf("collect calldata: %v", err)
	}

	parsed, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	method := parsed.Methods["collect"]
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack collect inputs: %v", err)
	}

	tuple, ok := values[0].(struct {
		TokenId    *big.Int       `json:"tokenId"`
		Recipient  common.Address `json:"recipient"`
		Amount0Max *big.Int       `json:"amount0Max"`
		Amount1Max *big.Int       `json:"amount1Max"`
	})
	if !ok {
		t.Fatalf("collect tuple has unexpected shape %T", values[0])
	}

	maxUint128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	if tuple.Amount0Max.Cmp(maxUint128) != 0 || tuple.Amount1Max.Cmp(maxUint128) != 0 {
		t.Fatalf("collect maxima = %s/%s, want max uint128", tuple.Amount0Max, tuple.Amount1Max)
	}
	if tuple.TokenId.Cmp(big.NewInt(123456)) != 0 {
		t.Fatalf("collect token id = %s, want 123456", tuple.TokenId)
	}
	if tuple.Recipient != recipient {
		t.Fatalf("collect recipient = %s, want %s", tuple.Recipient.Hex(), recipient.Hex())
	}
}

func TestSwapRouterCalldata(t *testing.T) {
	router := NewRouter(common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564"))
	params := SwapParams{
		TokenIn:   common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		TokenOut:  common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		Fee:       500,
		Recipient: common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"),
		Deadline:  big.NewInt(1_700_000_000),
		Amount:    big.NewInt(1_000_000),
		Limit:     big.NewInt(0),
	}

	inputData, err := router.ExactInputSingleCalldata(params)
	if err != nil {
		t.Fatalf("exactInputSingle calldata: %v", err)
	}
	outputData, err := router.ExactOutputSingleCalldata(params)
	if err != nil {
		t.Fatalf("exactOutputSingle calldata: %v", err)
	}
	if hex.EncodeToString(inputData[:4]) == hex.EncodeToString(outputData[:4]) {
		t.Fatalf("input and output selectors should differ")
	}

	parsed, err := SwapRouterABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	if _, err := parsed.Methods["exactInputSingle"].Inputs.Unpack(inputData[4:]); err != nil {
		t.Fatalf("unpack exactInputSingle inputs: %v", err)
	}
}

func TestMintTopicsFilterShape(t *testing.T) {
	manager := NewPositionManager(nil, common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88"))
	topics := manager.MintTopics(big.NewInt(777))

	if len(topics) != 4 {
		t.Fatalf("topics arity = %d, want 4", len(topics))
	}
	if topics[0][0] != transferTopic {
		t.Fatalf("topic0 = %s, want transfer signature", topics[0][0].Hex())
	}
	if topics[1][0] != (common.Hash{}) {
		t.Fatalf("from topic = %s, want zero address", topics[1][0].Hex())
	}
	if topics[2] != nil {
		t.Fatalf("to topic should be unconstrained")
	}
	if topics[3][0] != common.BigToHash(big.NewInt(777)) {
		t.Fatalf("token id topic = %s", topics[3][0].Hex())
	}
}
