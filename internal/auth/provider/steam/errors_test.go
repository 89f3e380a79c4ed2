package steam

import (
	"errors"
	"testing"

	"steam-auth-service/internal/auth/provider/openid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsOpenIDError(t *testing.T) {
	cause := errors.New("boom")
	err := error(newError(KindFetchFailed, cause))

	var oerr *openid.Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "failed to fetch steam profile", oerr.Message)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindFetchFailed, serr.Kind)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.NotErrorIs(t, err, ErrInvalidProfile)
}

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, newError(KindInvalidEndpoint, nil), "steam: invalid op_endpoint")
	assert.EqualError(t, newError(KindInvalidProfile, nil), "steam: invalid steam profile")
	assert.Equal(t, "fetch_failed", KindFetchFailed.String())
	assert.Equal(t, "unknown", ErrorKind(0).String())
}
