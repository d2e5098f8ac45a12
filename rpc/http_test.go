package rpc

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"trashbin/core"
	"trashbin/core/events"
	"trashbin/native/tokens"
	"trashbin/storage"
)

var (
	testOwner      = common.HexToAddress("0x01")
	testGovernance = common.HexToAddress("0x02")
	testModule     = common.HexToAddress("0xAA")
	testSeller     = common.HexToAddress("0x11")
	testBuyer      = common.HexToAddress("0x12")
	testUnique     = common.HexToAddress("0xB1")
)

func newTestServer(t *testing.T) (*httptest.Server, *core.Node, *tokens.UniqueCollection) {
	t.Helper()
	node, err := core.NewNode(storage.NewMemDB(), testOwner, testGovernance, testModule, events.NoopEmitter{}, slog.Default())
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	unique := tokens.NewUniqueCollection()
	node.Registry().RegisterUnique(testUnique, unique)

	server := NewServer(node)
	ts := httptest.NewServer(http.HandlerFunc(server.handle))
	t.Cleanup(ts.Close)
	return ts, node, unique
}

func call(t *testing.T, url, method string, params interface{}) *RPCResponse {
	t.Helper()
	payload := map[string]interface{}{
		"jsonrpc": jsonRPCVersion,
		"id":      1,
		"method":  method,
	}
	if params != nil {
		payload["params"] = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	out := &RPCResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func requireSuccess(t *testing.T, resp *RPCResponse) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
}

func TestHandleRejectsMalformedRequests(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	out := &RPCResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error == nil || out.Error.Code != codeParseError {
		t.Fatalf("expected parse error, got %+v", out.Error)
	}

	unknown := call(t, ts.URL, "market_unknown", nil)
	if unknown.Error == nil || unknown.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", unknown.Error)
	}
}

func TestAccessState(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := call(t, ts.URL, "access_state", nil)
	requireSuccess(t, resp)
	var state accessStateResult
	raw, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Owner != testOwner.Hex() || state.Paused {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestBankCreditAndBalance(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := call(t, ts.URL, "bank_credit", creditParams{
		Caller: testOwner.Hex(),
		To:     testBuyer.Hex(),
		Amount: "50000",
	})
	requireSuccess(t, resp)

	balance := call(t, ts.URL, "bank_balance", balanceParams{Address: testBuyer.Hex()})
	requireSuccess(t, balance)
	if balance.Result != "50000" {
		t.Fatalf("expected balance 50000, got %v", balance.Result)
	}

	denied := call(t, ts.URL, "bank_credit", creditParams{
		Caller: testSeller.Hex(),
		To:     testSeller.Hex(),
		Amount: "1",
	})
	if denied.Error == nil || denied.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", denied.Error)
	}
}

func TestPricingUpdateAuthorization(t *testing.T) {
	ts, _, _ := newTestServer(t)

	denied := call(t, ts.URL, "pricing_update", settingUpdateParams{
		Caller:  testSeller.Hex(),
		Setting: "buyPrice",
		Value:   "5000",
	})
	if denied.Error == nil || denied.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", denied.Error)
	}

	updated := call(t, ts.URL, "pricing_update", settingUpdateParams{
		Caller:  testOwner.Hex(),
		Setting: "buyPrice",
		Value:   "5000",
	})
	requireSuccess(t, updated)

	settings := call(t, ts.URL, "pricing_get", nil)
	requireSuccess(t, settings)
	var result settingsResult
	raw, _ := json.Marshal(settings.Result)
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if result.BuyPrice != "5000" {
		t.Fatalf("expected buy price 5000, got %s", result.BuyPrice)
	}
}

func TestSellAndBuyRoundTrip(t *testing.T) {
	ts, node, unique := newTestServer(t)

	// Fund the module so it can pay deposit fees, fund the buyer, shrink
	// the economic parameters to test scale.
	for _, update := range []settingUpdateParams{
		{Caller: testOwner.Hex(), Setting: "buyPrice", Value: "10000"},
		{Caller: testOwner.Hex(), Setting: "agingDelay", Value: "2"},
	} {
		requireSuccess(t, call(t, ts.URL, "pricing_update", update))
	}
	requireSuccess(t, call(t, ts.URL, "bank_credit", creditParams{
		Caller: testOwner.Hex(), To: testModule.Hex(), Amount: "1000",
	}))
	requireSuccess(t, call(t, ts.URL, "bank_credit", creditParams{
		Caller: testOwner.Hex(), To: testBuyer.Hex(), Amount: "10000",
	}))
	unique.Issue(testSeller, big.NewInt(7))

	requireSuccess(t, call(t, ts.URL, "market_sell", sellParams{
		Seller:      testSeller.Hex(),
		Collections: []string{testUnique.Hex()},
		TokenIDs:    []string{"7"},
		Amounts:     []string{"1"},
		Unique:      []bool{true},
	}))
	if node.RecordCount() != 1 {
		t.Fatalf("expected one record, got %d", node.RecordCount())
	}

	// The record has not aged yet.
	early := call(t, ts.URL, "market_buy", buyParams{
		Buyer: testBuyer.Hex(), Value: "10000", Indexes: []uint64{0},
	})
	if early.Error == nil || early.Error.Code != codeServerError {
		t.Fatalf("expected server error for unaged record, got %+v", early.Error)
	}

	// Each successful mutation advances the height; credits age the record.
	requireSuccess(t, call(t, ts.URL, "bank_credit", creditParams{
		Caller: testOwner.Hex(), To: testOwner.Hex(), Amount: "1",
	}))
	requireSuccess(t, call(t, ts.URL, "bank_credit", creditParams{
		Caller: testOwner.Hex(), To: testOwner.Hex(), Amount: "1",
	}))

	requireSuccess(t, call(t, ts.URL, "market_buy", buyParams{
		Buyer: testBuyer.Hex(), Value: "10000", Indexes: []uint64{0},
	}))
	if node.RecordCount() != 0 {
		t.Fatalf("expected empty store, got %d", node.RecordCount())
	}
	owner, err := unique.OwnerOf(big.NewInt(7))
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner != testBuyer {
		t.Fatalf("expected buyer to own the token, got %s", owner.Hex())
	}
}
