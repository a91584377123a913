package dxs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadEntries(t *testing.T) {

	assert := assert.New(t)

	var gotQuery []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(DXS_ENDPOINT, r.URL.Path)
		gotQuery = r.URL.Query()[DXS_QUERY_PARAM]
		w.Write([]byte(`{"entries":[{"id":"33556226","value":"48.3"},{"id":"33556229","value":"87"}]}`))
	}))
	defer srv.Close()

	var recorded []string
	client, err := CreateDxsClient(srv.URL+"/", time.Second, zap.NewNop(), []DxsInstrument{{
		RecordTime: func(fnName string, _ time.Duration) { recorded = append(recorded, fnName) },
	}})
	require.NoError(t, err)

	env, err := client.ReadEntries(context.Background(), BatteryEntries())
	require.NoError(t, err)

	assert.Equal([]string(BatteryEntries()), gotQuery)
	assert.Equal(Envelope{{Id: "33556226", Value: "48.3"}, {Id: "33556229", Value: "87"}}, env)
	assert.Equal([]string{"Fetch"}, recorded)
}

func TestFetchTimeout(t *testing.T) {

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := CreateDxsClient(srv.URL, 100*time.Millisecond, nil, nil)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), BuildQuery(BatteryEntries()))

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, REASON_TIMEOUT, netErr.Reason)
	assert.Equal(t, REASON_TIMEOUT, FailureReason(err))
}

func TestFetchEmptyBody(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := CreateDxsClient(srv.URL, time.Second, nil, nil)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), BuildQuery(BatteryEntries()))
	assert.Equal(t, REASON_EMPTY_BODY, FailureReason(err))
}

func TestFetchHttpStatus(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := CreateDxsClient(srv.URL, time.Second, nil, nil)
	require.NoError(t, err)

	_, err = client.ReadEntries(context.Background(), BatteryEntries())
	assert.Equal(t, "http status 503", FailureReason(err))
}

func TestFetchConnectionRefused(t *testing.T) {

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, err := CreateDxsClient(addr, time.Second, nil, nil)
	require.NoError(t, err)

	_, err = client.ReadEntries(context.Background(), BatteryEntries())
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestCreateDxsClientValidatesUrl(t *testing.T) {

	assert := assert.New(t)

	_, err := CreateDxsClient("ftp://inverter", time.Second, nil, nil)
	assert.Error(err)

	_, err = CreateDxsClient("http://", time.Second, nil, nil)
	assert.Error(err)

	client, err := CreateDxsClient("http://192.168.1.10", 0, nil, nil)
	assert.NoError(err)
	assert.Equal(DEFAULT_READ_TIMEOUT, client.timeout)
}
