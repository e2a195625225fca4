package contests

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/contestsync/go/clients"
	"github.com/mcdev12/contestsync/go/internal/joinsync"
	"github.com/mcdev12/contestsync/go/internal/models"
)

func TestPrometheusMetrics_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	api := new(MockContestAPI)
	store := joinsync.NewStore()
	r := NewReconciler(api, store, testUserID, WithMetrics(m))

	store.MarkUnjoined("1", nil)
	api.On("GetAllContests", mock.Anything, testUserID).
		Return([]models.ContestRecord{contest("1", 1, false), contest("2", 2, false)}, nil).Once()
	api.On("GetAllContests", mock.Anything, testUserID).Return(nil, errors.New("offline")).Once()
	api.On("JoinContest", mock.Anything, models.ContestID("1"), testUserID).
		Return(&models.ContestRecord{ContestID: "1"}, nil)
	api.On("JoinContest", mock.Anything, models.ContestID("2"), testUserID).
		Return(nil, &clients.APIError{StatusCode: http.StatusConflict})

	_, _ = r.FetchAll(context.Background())
	_, _ = r.FetchAll(context.Background())
	_, _ = r.Join(context.Background(), "1")
	_, _ = r.Join(context.Background(), "2")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("all", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("all", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.joins.WithLabelValues("joined")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.joins.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.overridesApplied))
}

func TestNewPrometheusMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMetrics(reg)
	assert.Error(t, err)
}
