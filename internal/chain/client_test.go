package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// newRPCServer answers eth_call batches; elements at failing indexes revert.
func newRPCServer(t *testing.T, failing map[int]bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqs []rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resps := make([]rpcResponse, 0, len(reqs))
		for i, req := range reqs {
			resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
			switch {
			case req.Method != "eth_call" || len(req.Params) != 2:
				resp.Error = &rpcErrorBody{Code: -32601, Message: "unexpected request"}
			case failing[i]:
				resp.Error = &rpcErrorBody{Code: 3, Message: "execution reverted"}
			default:
				resp.Result = "0x0102"
			}
			resps = append(resps, resp)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resps)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func callMsgs(n int) []ethereum.CallMsg {
	target := common.HexToAddress("0x52eaecac2402633d98b95213d0b473e069d86590")
	msgs := make([]ethereum.CallMsg, n)
	for i := range msgs {
		msgs[i] = ethereum.CallMsg{To: &target, Data: []byte{0x1a, 0x68, 0x65, byte(i)}}
	}
	return msgs
}

func TestBatchCallContractElementErrors(t *testing.T) {
	srv := newRPCServer(t, map[int]bool{1: true})

	client, err := NewClient(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	results, errs, err := client.BatchCallContract(context.Background(), callMsgs(3))
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(results) != 3 || len(errs) != 3 {
		t.Fatalf("misaligned output: %d results, %d errors", len(results), len(errs))
	}
	for _, i := range []int{0, 2} {
		if errs[i] != nil {
			t.Fatalf("element %d: unexpected error %v", i, errs[i])
		}
		if string(results[i]) != "\x01\x02" {
			t.Fatalf("element %d: result %x", i, results[i])
		}
	}
	if errs[1] == nil || errs[1].Error() != "execution reverted" {
		t.Fatalf("element 1: expected revert, got %v", errs[1])
	}
	if results[1] != nil {
		t.Fatalf("element 1: expected nil result, got %x", results[1])
	}
}

func TestBatchCallContractTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	results, errs, err := client.BatchCallContract(context.Background(), callMsgs(2))
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if results != nil || errs != nil {
		t.Fatalf("expected nil slices, got %v %v", results, errs)
	}
}

func TestBatchCallContractEmpty(t *testing.T) {
	client := &Client{}
	results, errs, err := client.BatchCallContract(context.Background(), nil)
	if err != nil || results != nil || errs != nil {
		t.Fatalf("expected no-op for empty batch, got %v %v %v", results, errs, err)
	}
}
