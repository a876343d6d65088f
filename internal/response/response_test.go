package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hampuff/pkg/domainerrors"
)

func TestRenderTwiML_WrapsAndEscapes(t *testing.T) {
	body, err := RenderTwiML("flux > 150 & rising")
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "<Response><Message>")
	assert.Contains(t, text, "flux &gt; 150 &amp; rising")
	assert.Contains(t, text, "</Message></Response>")
}

func TestTwiMLAndPlain_SameContent(t *testing.T) {
	const msg = "[Hampuff - EST] Updated: Sun 30 Aug 10:35"

	twiml := httptest.NewRecorder()
	WriteTwiML(twiml, msg)
	assert.Equal(t, http.StatusOK, twiml.Code)
	assert.Contains(t, twiml.Body.String(), msg)

	plain := httptest.NewRecorder()
	WritePlain(plain, http.StatusOK, msg)
	assert.Contains(t, plain.Body.String(), msg)
}

func TestWriteJSONError_Envelope(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONError(rr, domainerrors.New(domainerrors.CodeNotRegistered, "phone number is not registered"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t,
		`{"error":"not_registered","message":"phone number is not registered"}`,
		rr.Body.String())
}

func TestWriteJSONError_UnknownErrorIsInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONError(rr, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"internal"`)
}

func TestWriteJSONOK_Envelope(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONOK(rr, http.StatusCreated, map[string]any{"call_sign": "W1XYZ"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"status":"ok","call_sign":"W1XYZ"}`, rr.Body.String())
}
