package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trashbin/core"
	"trashbin/native/access"
	"trashbin/native/market"
	"trashbin/native/treasury"
	"trashbin/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codePaused         = -32002
)

// Server exposes the node over JSON-RPC 2.0.
type Server struct {
	node *core.Node
}

func NewServer(node *core.Node) *Server {
	return &Server{node: node}
}

// Start serves JSON-RPC on addr. Prometheus metrics are exposed on /metrics
// of the same listener.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeEngineError maps a domain error onto the RPC error space.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) int {
	switch {
	case errors.Is(err, access.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, id, codeUnauthorized, err.Error(), nil)
		return codeUnauthorized
	case errors.Is(err, access.ErrPaused):
		writeError(w, http.StatusConflict, id, codePaused, err.Error(), nil)
		return codePaused
	case errors.Is(err, core.ErrUnknownSetting),
		errors.Is(err, market.ErrArrayLengthMismatch),
		errors.Is(err, market.ErrNonMonotonicIndexes):
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	case errors.Is(err, treasury.ErrBelowMinimumBalance),
		errors.Is(err, market.ErrInsufficientPayment),
		errors.Is(err, market.ErrTooEarly):
		writeError(w, http.StatusConflict, id, codeServerError, err.Error(), nil)
		return codeServerError
	default:
		writeError(w, http.StatusBadRequest, id, codeServerError, err.Error(), nil)
		return codeServerError
	}
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	started := time.Now()
	code := s.dispatch(w, req)
	observability.RPCMetrics().Observe(req.Method, code, time.Since(started))
}

// dispatch routes the request and returns the error code written, zero on
// success.
func (s *Server) dispatch(w http.ResponseWriter, req *RPCRequest) int {
	switch req.Method {
	case "market_depositUnique":
		return s.handleDepositUnique(w, req)
	case "market_depositMulti":
		return s.handleDepositMulti(w, req)
	case "market_depositBatch":
		return s.handleDepositBatch(w, req)
	case "market_sell":
		return s.handleSell(w, req)
	case "market_buy":
		return s.handleBuy(w, req)
	case "market_isAvailableToBuy":
		return s.handleIsAvailableToBuy(w, req)
	case "market_records":
		return s.handleRecords(w, req)
	case "market_getRecord":
		return s.handleGetRecord(w, req)
	case "market_length":
		return s.handleLength(w, req)
	case "market_findIndex":
		return s.handleFindIndex(w, req)
	case "market_removeRecord":
		return s.handleRemove(w, req)
	case "market_deleteIndexes":
		return s.handleDeleteIndexes(w, req)
	case "market_withdrawUnique":
		return s.handleWithdrawUnique(w, req)
	case "market_withdrawMulti":
		return s.handleWithdrawMulti(w, req)
	case "market_withdrawFungible":
		return s.handleWithdrawFungible(w, req)
	case "treasury_withdraw":
		return s.handleTreasuryWithdraw(w, req)
	case "bank_credit":
		return s.handleBankCredit(w, req)
	case "bank_balance":
		return s.handleBankBalance(w, req)
	case "pricing_get":
		return s.handlePricingSettings(w, req)
	case "pricing_update":
		return s.handlePricingUpdate(w, req)
	case "pricing_updateAll":
		return s.handlePricingUpdateAll(w, req)
	case "access_state":
		return s.handleAccessState(w, req)
	case "access_togglePause":
		return s.handleTogglePause(w, req)
	case "access_transferOwnership":
		return s.handleTransferOwnership(w, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return codeMethodNotFound
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("missing params object")
	}
	if len(req.Params) > 1 {
		return fmt.Errorf("expected a single params object")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s is not a valid hex address: %q", field, value)
	}
	return common.HexToAddress(value), nil
}

func parseBig(field, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%s is not a valid decimal integer: %q", field, value)
	}
	return parsed, nil
}

func parseAddressSlice(field string, values []string) ([]common.Address, error) {
	out := make([]common.Address, len(values))
	for i, value := range values {
		addr, err := parseAddress(fmt.Sprintf("%s[%d]", field, i), value)
		if err != nil {
			return nil, err
		}
		out[i] = addr
	}
	return out, nil
}

func parseBigSlice(field string, values []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, value := range values {
		parsed, err := parseBig(fmt.Sprintf("%s[%d]", field, i), value)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}
