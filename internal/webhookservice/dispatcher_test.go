package webhookservice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finbase/ledger-api/internal/domain"
)

func testTransaction(from, to *uuid.UUID) domain.Transaction {
	return domain.Transaction{
		ID:          uuid.New(),
		FromAccount: from,
		ToAccount:   to,
		Amount:      decimal.RequireFromString("25.50"),
		TxnType:     domain.TxnTypeTransfer,
		Status:      domain.StatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestSign(t *testing.T) {
	// Test case 2 from RFC 4231.
	got := Sign("Jefe", []byte("what do ya want for nothing?"))
	require.Equal(t, "sha256=5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestInvolvedAccounts(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	testCases := []struct {
		name string
		from *uuid.UUID
		to   *uuid.UUID
		want []uuid.UUID
	}{
		{name: "credit", to: &b, want: []uuid.UUID{b}},
		{name: "debit", from: &a, want: []uuid.UUID{a}},
		{name: "transfer", from: &a, to: &b, want: []uuid.UUID{a, b}},
		{name: "self transfer deduplicated", from: &a, to: &a, want: []uuid.UUID{a}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := involvedAccounts(domain.Transaction{FromAccount: tc.from, ToAccount: tc.to})
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDeliverRetriesUntilSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := domain.Webhook{ID: uuid.New(), AccountID: uuid.New(), URL: server.URL, Secret: "whsec"}
	event := domain.WebhookEvent{ID: uuid.New(), WebhookID: webhook.ID}

	repo := NewMockRepo(ctrl)
	gomock.InOrder(
		repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, false, int32(0)).Return(event, nil),
		repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, false, int32(1)).Return(event, nil),
		repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, true, int32(2)).Return(event, nil),
	)

	d := NewDispatcher(repo, server.Client())

	var sleeps []time.Duration
	d.sleep = func(delay time.Duration) { sleeps = append(sleeps, delay) }

	d.deliver(context.Background(), webhook, testTransaction(nil, &webhook.AccountID), event)

	require.Equal(t, 3, requests)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
}

func TestDeliverExhaustsRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	webhook := domain.Webhook{ID: uuid.New(), AccountID: uuid.New(), URL: server.URL, Secret: "whsec"}
	event := domain.WebhookEvent{ID: uuid.New(), WebhookID: webhook.ID}

	repo := NewMockRepo(ctrl)
	gomock.InOrder(
		repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, false, int32(0)).Return(event, nil),
		repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, false, int32(1)).Return(event, nil),
		repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, false, int32(2)).Return(event, nil),
		repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, false, int32(3)).Return(event, nil),
	)

	d := NewDispatcher(repo, server.Client())

	var sleeps []time.Duration
	d.sleep = func(delay time.Duration) { sleeps = append(sleeps, delay) }

	d.deliver(context.Background(), webhook, testTransaction(nil, &webhook.AccountID), event)

	require.Equal(t, MaxRetries+1, requests)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, sleeps)
}

func TestDispatchFansOutPerWebhook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	from := uuid.New()
	to := uuid.New()
	txn := testTransaction(&from, &to)

	secrets := map[string]string{
		"/sender-1":   "s1",
		"/sender-2":   "s2",
		"/receiver-1": "r1",
	}

	var mu sync.Mutex
	received := map[string]int{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// Receivers verify the MAC over the exact bytes on the wire.
		require.Equal(t, Sign(secrets[r.URL.Path], body), r.Header.Get(SignatureHeader))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload domain.WebhookPayload
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, domain.EventTransactionCreated, payload.EventType)
		require.Equal(t, txn.ID, payload.Transaction.ID)

		mu.Lock()
		received[r.URL.Path]++
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	senderHooks := []domain.Webhook{
		{ID: uuid.New(), AccountID: from, URL: server.URL + "/sender-1", Secret: "s1"},
		{ID: uuid.New(), AccountID: from, URL: server.URL + "/sender-2", Secret: "s2"},
	}
	receiverHooks := []domain.Webhook{
		{ID: uuid.New(), AccountID: to, URL: server.URL + "/receiver-1", Secret: "r1"},
	}

	repo := NewMockRepo(ctrl)
	repo.EXPECT().ListByAccount(gomock.Any(), from).Return(senderHooks, nil)
	repo.EXPECT().ListByAccount(gomock.Any(), to).Return(receiverHooks, nil)

	for _, webhook := range append(senderHooks, receiverHooks...) {
		event := domain.WebhookEvent{ID: uuid.New(), WebhookID: webhook.ID, TxnID: txn.ID}
		repo.EXPECT().CreateEvent(gomock.Any(), webhook.ID, txn.ID).Return(event, nil)
		repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, true, int32(0)).Return(event, nil)
	}

	d := NewDispatcher(repo, server.Client())
	d.Dispatch(context.Background(), txn)

	require.Equal(t, map[string]int{"/sender-1": 1, "/sender-2": 1, "/receiver-1": 1}, received)
}

func TestDispatchSkipsAccountOnListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	from := uuid.New()
	txn := testTransaction(&from, nil)
	txn.TxnType = domain.TxnTypeDebit

	repo := NewMockRepo(ctrl)
	repo.EXPECT().ListByAccount(gomock.Any(), from).Return(nil, context.DeadlineExceeded)
	repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	d := NewDispatcher(repo, nil)
	d.Dispatch(context.Background(), txn)
}

func TestDeliverEndpointDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Unroutable without a listener, so every attempt is a transport error.
	webhook := domain.Webhook{ID: uuid.New(), AccountID: uuid.New(), URL: "http://127.0.0.1:1", Secret: "whsec"}
	event := domain.WebhookEvent{ID: uuid.New(), WebhookID: webhook.ID}

	repo := NewMockRepo(ctrl)
	repo.EXPECT().UpdateEventAttempt(gomock.Any(), event.ID, false, gomock.Any()).
		Times(MaxRetries + 1).
		Return(event, nil)

	d := NewDispatcher(repo, nil)
	d.sleep = func(time.Duration) {}

	d.deliver(context.Background(), webhook, testTransaction(nil, &webhook.AccountID), event)
}
