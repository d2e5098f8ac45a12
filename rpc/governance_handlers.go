package rpc

import (
	"math/big"
	"net/http"

	"trashbin/native/pricing"
)

type callerParams struct {
	Caller string `json:"caller"`
}

type creditParams struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type balanceParams struct {
	Address string `json:"address"`
}

type settingUpdateParams struct {
	Caller  string `json:"caller"`
	Setting string `json:"setting"`
	Value   string `json:"value"`
}

type settingsPayload struct {
	BuyPrice              string `json:"buyPrice"`
	SellFee               string `json:"sellFee"`
	StandardDiscountBps   uint64 `json:"standardDiscountBps"`
	GovernanceDiscountBps uint64 `json:"governanceDiscountBps"`
	AgingDelayBlocks      uint64 `json:"agingDelayBlocks"`
	MinBalance            string `json:"minBalance"`
	MaxBalance            string `json:"maxBalance"`
	OwnerShareBps         uint64 `json:"ownerShareBps"`
}

type settingUpdateAllParams struct {
	Caller   string          `json:"caller"`
	Settings settingsPayload `json:"settings"`
}

type transferOwnershipParams struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

type settingsResult struct {
	BuyPrice              string `json:"buyPrice"`
	SellFee               string `json:"sellFee"`
	StandardDiscountBps   uint64 `json:"standardDiscountBps"`
	GovernanceDiscountBps uint64 `json:"governanceDiscountBps"`
	AgingDelayBlocks      uint64 `json:"agingDelayBlocks"`
	MinBalance            string `json:"minBalance"`
	MaxBalance            string `json:"maxBalance"`
	OwnerShareBps         uint64 `json:"ownerShareBps"`
}

type accessStateResult struct {
	Owner      string `json:"owner"`
	Governance string `json:"governance"`
	Paused     bool   `json:"paused"`
	Height     uint64 `json:"height"`
}

func (s *Server) handleTreasuryWithdraw(w http.ResponseWriter, req *RPCRequest) int {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	distributed, err := s.node.WithdrawBalance(caller)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, distributed.String())
	return 0
}

func (s *Server) handleBankCredit(w http.ResponseWriter, req *RPCRequest) int {
	var params creditParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	to, err := parseAddress("to", params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	amount, err := parseBig("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.Credit(caller, to, amount); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleBankBalance(w http.ResponseWriter, req *RPCRequest) int {
	var params balanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	writeResult(w, req.ID, s.node.Balance(addr).String())
	return 0
}

func (s *Server) handlePricingSettings(w http.ResponseWriter, req *RPCRequest) int {
	settings := s.node.Settings()
	writeResult(w, req.ID, settingsResult{
		BuyPrice:              settings.BuyPrice.String(),
		SellFee:               settings.SellFee.String(),
		StandardDiscountBps:   settings.StandardDiscountBps,
		GovernanceDiscountBps: settings.GovernanceDiscountBps,
		AgingDelayBlocks:      settings.AgingDelayBlocks,
		MinBalance:            settings.MinBalance.String(),
		MaxBalance:            settings.MaxBalance.String(),
		OwnerShareBps:         settings.OwnerShareBps,
	})
	return 0
}

func (s *Server) handlePricingUpdate(w http.ResponseWriter, req *RPCRequest) int {
	var params settingUpdateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	value, err := parseBig("value", params.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.UpdateSetting(caller, params.Setting, value); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handlePricingUpdateAll(w http.ResponseWriter, req *RPCRequest) int {
	var params settingUpdateAllParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	next := pricing.Settings{
		StandardDiscountBps:   params.Settings.StandardDiscountBps,
		GovernanceDiscountBps: params.Settings.GovernanceDiscountBps,
		AgingDelayBlocks:      params.Settings.AgingDelayBlocks,
		OwnerShareBps:         params.Settings.OwnerShareBps,
	}
	weiFields := []struct {
		name  string
		value string
		dst   **big.Int
	}{
		{"settings.buyPrice", params.Settings.BuyPrice, &next.BuyPrice},
		{"settings.sellFee", params.Settings.SellFee, &next.SellFee},
		{"settings.minBalance", params.Settings.MinBalance, &next.MinBalance},
		{"settings.maxBalance", params.Settings.MaxBalance, &next.MaxBalance},
	}
	for _, field := range weiFields {
		parsed, err := parseBig(field.name, field.value)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return codeInvalidParams
		}
		*field.dst = parsed
	}
	if err := s.node.UpdateAllSettings(caller, next); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleAccessState(w http.ResponseWriter, req *RPCRequest) int {
	writeResult(w, req.ID, accessStateResult{
		Owner:      s.node.Owner().Hex(),
		Governance: s.node.Governance().Hex(),
		Paused:     s.node.Paused(),
		Height:     s.node.Height(),
	})
	return 0
}

func (s *Server) handleTogglePause(w http.ResponseWriter, req *RPCRequest) int {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	paused, err := s.node.TogglePause(caller)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, paused)
	return 0
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, req *RPCRequest) int {
	var params transferOwnershipParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	newOwner, err := parseAddress("newOwner", params.NewOwner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.TransferOwnership(caller, newOwner); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}
