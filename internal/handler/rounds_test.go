package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugaemi/horsingaround-server/internal/game"
	"github.com/ugaemi/horsingaround-server/internal/record"
)

type mockRoundStore struct {
	rounds    []*record.Round
	lastLimit int
	err       error
}

func (m *mockRoundStore) Save(_ context.Context, r *record.Round) error {
	m.rounds = append(m.rounds, r)
	return nil
}

func (m *mockRoundStore) FindByID(_ context.Context, id string) (*record.Round, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rounds {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRoundStore) ListRecent(_ context.Context, limit int) ([]*record.Round, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.rounds[:min(limit, len(m.rounds))], nil
}

func (m *mockRoundStore) Close() error { return nil }

func newRoundsMux(h *RoundsHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rounds", h.HandleList)
	mux.HandleFunc("GET /rounds/{id}", h.HandleGet)
	return mux
}

func TestRoundsHandler_List(t *testing.T) {
	st := &mockRoundStore{}
	for i := 0; i < 3; i++ {
		st.Save(context.Background(), record.NewRound("ABCD", "town", game.CauseCaught, i, time.Second, time.Now()))
	}
	mux := newRoundsMux(NewRoundsHandler(st))

	tests := []struct {
		name      string
		query     string
		status    int
		wantLimit int
		wantLen   int
	}{
		{"default limit", "", http.StatusOK, defaultRoundsLimit, 3},
		{"explicit limit", "?limit=2", http.StatusOK, 2, 2},
		{"capped limit", "?limit=5000", http.StatusOK, maxRoundsLimit, 3},
		{"bad limit", "?limit=abc", http.StatusBadRequest, 0, 0},
		{"zero limit", "?limit=0", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st.lastLimit = 0
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rounds"+tt.query, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantLimit, st.lastLimit)
			if tt.status != http.StatusOK {
				return
			}
			var rounds []record.Round
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rounds))
			assert.Len(t, rounds, tt.wantLen)
		})
	}
}

func TestRoundsHandler_ListWithoutStore(t *testing.T) {
	mux := newRoundsMux(NewRoundsHandler(nil))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rounds", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRoundsHandler_Get(t *testing.T) {
	st := &mockRoundStore{}
	r := record.NewRound("ABCD", "yard", game.CauseMeterDepleted, 0, time.Second, time.Now())
	st.Save(context.Background(), r)
	mux := newRoundsMux(NewRoundsHandler(st))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rounds/"+r.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got record.Round
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "meter_depleted", got.Cause)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rounds/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoundsHandler_StoreError(t *testing.T) {
	st := &mockRoundStore{err: errors.New("connection refused")}
	mux := newRoundsMux(NewRoundsHandler(st))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rounds", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rounds/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
