package klutch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardpilot/internal/models"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, zap.NewNop())
}

func TestExecute_SendsQueryVariablesAndBearer(t *testing.T) {
	var gotBody struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	var gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"data":{"ok":true}}`))
	})

	var out struct {
		OK bool `json:"ok"`
	}
	err := client.Execute(context.Background(), "query { ok }", map[string]any{"id": "t-1"}, "tok-123", &out)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if gotBody.Query != "query { ok }" {
		t.Errorf("query %q", gotBody.Query)
	}
	if gotBody.Variables["id"] != "t-1" {
		t.Errorf("variables %v", gotBody.Variables)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("authorization header %q", gotAuth)
	}
	if !out.OK {
		t.Error("data not decoded")
	}
}

func TestExecute_NoTokenOmitsAuthHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{}}`))
	})

	if err := client.Execute(context.Background(), "query { ok }", nil, "", nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("unexpected authorization header %q", gotAuth)
	}
}

func TestExecute_ErrorsPayloadSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"rule not found"}]}`))
	})

	err := client.Execute(context.Background(), "query { ok }", nil, "", nil)
	if err == nil {
		t.Fatal("expected an error")
	}

	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("expected *QueryError, got %T: %v", err, err)
	}
	if !strings.Contains(string(queryErr.Errors), "rule not found") {
		t.Errorf("raw payload not carried: %s", queryErr.Errors)
	}
}

func TestExecute_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	if err := client.Execute(context.Background(), "query { ok }", nil, "", nil); err == nil {
		t.Fatal("expected an error")
	}
}

func TestAuthenticate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"createSessionToken":"session-token"}}`))
	})

	token, err := client.Authenticate(context.Background(), "id", "secret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if token != "session-token" {
		t.Errorf("token %q", token)
	}
}

func TestAuthenticate_EmptyToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"createSessionToken":""}}`))
	})

	_, err := client.Authenticate(context.Background(), "id", "secret")
	if err == nil {
		t.Fatal("expected an error")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T: %v", err, err)
	}
}

func TestAuthenticate_UpstreamErrorWrapsAsAuthError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"bad credentials"}]}`))
	})

	_, err := client.Authenticate(context.Background(), "id", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T: %v", err, err)
	}
	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("AuthError should wrap the query error, got %v", err)
	}
}

func TestSumTransactions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"sumTransactions":-123.45}}`))
	})

	sum, err := client.SumTransactions(context.Background(), "tok", TransactionFilter{})
	if err != nil {
		t.Fatalf("SumTransactions failed: %v", err)
	}
	if sum != -123.45 {
		t.Errorf("sum %v", sum)
	}
}

func TestTransaction_DecodesItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"transaction":{
			"id":"tx-1","amount":42.5,"transactionStatus":"DECLINED",
			"declineReason":"Blocked by rule Swipe Twice","cardPresent":"CARD_NOT_PRESENT",
			"items":[{"id":"item-1","description":"coffee","price":4.5,"quantity":2,"category":{"id":"c1","name":"Food"}}]
		}}}`))
	})

	tx, err := client.Transaction(context.Background(), "tok", "tx-1")
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
	if tx.TransactionStatus != models.StatusDeclined {
		t.Errorf("status %q", tx.TransactionStatus)
	}
	if len(tx.Items) != 1 || tx.Items[0].Category == nil || tx.Items[0].Category.ID != "c1" {
		t.Errorf("items %+v", tx.Items)
	}
}

func TestTransaction_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"transaction":null}}`))
	})

	if _, err := client.Transaction(context.Background(), "tok", "missing"); err == nil {
		t.Fatal("expected an error")
	}
}
