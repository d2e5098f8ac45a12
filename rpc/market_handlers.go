package rpc

import (
	"net/http"

	"trashbin/native/market"
)

type depositUniqueParams struct {
	Depositor  string `json:"depositor"`
	Collection string `json:"collection"`
	TokenID    string `json:"tokenId"`
}

type depositMultiParams struct {
	Depositor  string `json:"depositor"`
	Collection string `json:"collection"`
	TokenID    string `json:"tokenId"`
	Amount     string `json:"amount"`
}

type depositBatchParams struct {
	Depositor  string   `json:"depositor"`
	Collection string   `json:"collection"`
	TokenIDs   []string `json:"tokenIds"`
	Amounts    []string `json:"amounts"`
}

type sellParams struct {
	Seller      string   `json:"seller"`
	Collections []string `json:"collections"`
	TokenIDs    []string `json:"tokenIds"`
	Amounts     []string `json:"amounts"`
	Unique      []bool   `json:"unique"`
}

type buyParams struct {
	Buyer         string   `json:"buyer"`
	Value         string   `json:"value"`
	Indexes       []uint64 `json:"indexes"`
	QualifyingIDs []string `json:"qualifyingIds,omitempty"`
}

type indexParams struct {
	Index uint64 `json:"index"`
}

type findIndexParams struct {
	Collection string `json:"collection"`
	TokenID    string `json:"tokenId"`
	Start      uint64 `json:"start"`
}

type removeParams struct {
	Caller       string `json:"caller"`
	Index        uint64 `json:"index"`
	QualifyingID string `json:"qualifyingId"`
}

type deleteIndexesParams struct {
	Caller  string   `json:"caller"`
	Indexes []uint64 `json:"indexes"`
}

type withdrawTokenParams struct {
	Caller     string `json:"caller"`
	Collection string `json:"collection"`
	TokenID    string `json:"tokenId"`
	Amount     string `json:"amount,omitempty"`
}

type withdrawFungibleParams struct {
	Caller string `json:"caller"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type recordJSON struct {
	Index        uint64 `json:"index"`
	Collection   string `json:"collection"`
	TokenID      string `json:"tokenId"`
	Multi        bool   `json:"multi"`
	DepositBlock uint64 `json:"depositBlock"`
}

func recordToJSON(index uint64, rec *market.AssetRecord) recordJSON {
	return recordJSON{
		Index:        index,
		Collection:   rec.Collection.Hex(),
		TokenID:      rec.TokenID.String(),
		Multi:        rec.Multi,
		DepositBlock: rec.DepositBlock,
	}
}

func (s *Server) handleDepositUnique(w http.ResponseWriter, req *RPCRequest) int {
	var params depositUniqueParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	depositor, err := parseAddress("depositor", params.Depositor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	collection, err := parseAddress("collection", params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	tokenID, err := parseBig("tokenId", params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.DepositUnique(depositor, collection, tokenID); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleDepositMulti(w http.ResponseWriter, req *RPCRequest) int {
	var params depositMultiParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	depositor, err := parseAddress("depositor", params.Depositor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	collection, err := parseAddress("collection", params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	tokenID, err := parseBig("tokenId", params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	amount, err := parseBig("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.DepositMulti(depositor, collection, tokenID, amount); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleDepositBatch(w http.ResponseWriter, req *RPCRequest) int {
	var params depositBatchParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	depositor, err := parseAddress("depositor", params.Depositor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	collection, err := parseAddress("collection", params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	tokenIDs, err := parseBigSlice("tokenIds", params.TokenIDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	amounts, err := parseBigSlice("amounts", params.Amounts)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.DepositMultiBatch(depositor, collection, tokenIDs, amounts); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleSell(w http.ResponseWriter, req *RPCRequest) int {
	var params sellParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	seller, err := parseAddress("seller", params.Seller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	addrs, err := parseAddressSlice("collections", params.Collections)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	tokenIDs, err := parseBigSlice("tokenIds", params.TokenIDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	amounts, err := parseBigSlice("amounts", params.Amounts)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.Sell(seller, addrs, tokenIDs, amounts, params.Unique); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleBuy(w http.ResponseWriter, req *RPCRequest) int {
	var params buyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	buyer, err := parseAddress("buyer", params.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	value, err := parseBig("value", params.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	qualifyingIDs, err := parseBigSlice("qualifyingIds", params.QualifyingIDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.Buy(buyer, value, params.Indexes, qualifyingIDs); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleIsAvailableToBuy(w http.ResponseWriter, req *RPCRequest) int {
	var params indexParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	available, err := s.node.IsAvailableToBuy(params.Index)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, available)
	return 0
}

func (s *Server) handleRecords(w http.ResponseWriter, req *RPCRequest) int {
	records := s.node.Records()
	out := make([]recordJSON, len(records))
	for i, rec := range records {
		out[i] = recordToJSON(uint64(i), rec)
	}
	writeResult(w, req.ID, out)
	return 0
}

func (s *Server) handleGetRecord(w http.ResponseWriter, req *RPCRequest) int {
	var params indexParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	rec, err := s.node.Record(params.Index)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, recordToJSON(params.Index, rec))
	return 0
}

func (s *Server) handleLength(w http.ResponseWriter, req *RPCRequest) int {
	writeResult(w, req.ID, s.node.RecordCount())
	return 0
}

func (s *Server) handleFindIndex(w http.ResponseWriter, req *RPCRequest) int {
	var params findIndexParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	collection, err := parseAddress("collection", params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	tokenID, err := parseBig("tokenId", params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	index, err := s.node.FindIndex(collection, tokenID, params.Start)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, index)
	return 0
}

func (s *Server) handleRemove(w http.ResponseWriter, req *RPCRequest) int {
	var params removeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	qualifyingID, err := parseBig("qualifyingId", params.QualifyingID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.RemoveRecord(caller, params.Index, qualifyingID); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleDeleteIndexes(w http.ResponseWriter, req *RPCRequest) int {
	var params deleteIndexesParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.DeleteIndexes(caller, params.Indexes); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleWithdrawUnique(w http.ResponseWriter, req *RPCRequest) int {
	var params withdrawTokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	collection, err := parseAddress("collection", params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	tokenID, err := parseBig("tokenId", params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.WithdrawUnique(caller, collection, tokenID); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleWithdrawMulti(w http.ResponseWriter, req *RPCRequest) int {
	var params withdrawTokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	collection, err := parseAddress("collection", params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	tokenID, err := parseBig("tokenId", params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	amount, err := parseBig("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.WithdrawMultiUnit(caller, collection, tokenID, amount); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}

func (s *Server) handleWithdrawFungible(w http.ResponseWriter, req *RPCRequest) int {
	var params withdrawFungibleParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	token, err := parseAddress("token", params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	amount, err := parseBig("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return codeInvalidParams
	}
	if err := s.node.WithdrawFungible(caller, token, amount); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, true)
	return 0
}
