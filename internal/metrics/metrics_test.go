package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func value(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return -1
	}
	if c := out.GetCounter(); c != nil {
		return c.GetValue()
	}
	return out.GetGauge().GetValue()
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware("duel-test"))
	r.Get("/api/v1/matches/{matchId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/matches/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}

	got := value(httpRequests.WithLabelValues("duel-test", http.MethodGet, "/api/v1/matches/{matchId}", "404"))
	assert.Equal(t, 3.0, got)
	assert.Equal(t, 0.0, value(httpInFlight.WithLabelValues("duel-test")))
}

func TestDomainCounters(t *testing.T) {
	SetQueueLengths(map[string]int{"squats": 3, "plank": 0})
	assert.Equal(t, 3.0, value(queueLength.WithLabelValues("squats")))

	before := value(matchesCreated.WithLabelValues("burpees"))
	MatchCreated("burpees")
	assert.Equal(t, before+1, value(matchesCreated.WithLabelValues("burpees")))

	before = value(signalsRelayed.WithLabelValues("voice-ice"))
	SignalRelayed("voice-ice")
	assert.Equal(t, before+1, value(signalsRelayed.WithLabelValues("voice-ice")))

	before = value(matchesEvicted)
	MatchesEvicted(4)
	assert.Equal(t, before+4, value(matchesEvicted))

	before = value(connections)
	ConnectionOpened()
	ConnectionOpened()
	ConnectionClosed()
	assert.Equal(t, before+1, value(connections))
}

func TestHandler_ExposesNamespace(t *testing.T) {
	MatchFinished("completed")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "duel_matches_finished_total"))
}
