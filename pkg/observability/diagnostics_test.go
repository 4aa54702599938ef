package observability_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/pkg/observability"
)

func TestDiagnosticsServerServesHealthz(t *testing.T) {
	t.Parallel()

	srv, err := observability.NewDiagnosticsServer("127.0.0.1:0", nil, nil, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = srv.Close() })

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDiagnosticsServerCloseStopsServing(t *testing.T) {
	t.Parallel()

	srv, err := observability.NewDiagnosticsServer("127.0.0.1:0", nil, nil, nil)
	require.NoError(t, err)

	addr := srv.Addr()
	require.NoError(t, srv.Close())

	_, err = http.Get("http://" + addr + "/healthz")
	assert.Error(t, err)
}
