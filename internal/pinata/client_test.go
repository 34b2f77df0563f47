package pinata_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/media"
	"rewind-backend/internal/pinata"
)

type fakePinata struct {
	failJSON bool
	failFile bool
	lastJSON map[string]interface{}
	files    int
}

func (f *fakePinata) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-jwt", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/pinning/pinFileToIPFS":
			if f.failFile {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid jwt"}`))
				return
			}
			file, header, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(file)
			assert.NotEmpty(t, data)
			assert.Equal(t, "coin-image.png", header.Filename)
			f.files++
			_, _ = w.Write([]byte(`{"IpfsHash":"bafyimage","PinSize":3}`))
		case "/pinning/pinJSONToIPFS":
			if f.failJSON {
				_, _ = w.Write([]byte(`{}`))
				return
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastJSON))
			_, _ = w.Write([]byte(`{"IpfsHash":"bafymeta"}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func pngImage() *media.DataURI {
	return &media.DataURI{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
}

func TestPinCoin_Success(t *testing.T) {
	fake := &fakePinata{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	client := pinata.NewClientWithHTTP(srv.URL, "test-jwt", srv.Client())

	pinned, err := client.PinCoin(context.Background(), pinata.CoinContent{
		Name:        "Sunset",
		Description: "golden",
		Symbol:      "SUN",
		Image:       pngImage(),
		Metadata:    map[string]string{"place": "beach"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ipfs://bafymeta", pinned.CID)
	assert.Equal(t, "bafyimage", pinned.ImageCID)
	assert.Equal(t, 1, fake.files)

	content := fake.lastJSON["pinataContent"].(map[string]interface{})
	assert.Equal(t, "ipfs://bafyimage", content["image"])
	assert.Equal(t, "SUN", content["symbol"])
	assert.Equal(t, map[string]interface{}{"place": "beach"}, content["metadata"])
	assert.Equal(t, map[string]interface{}{}, content["properties"])
}

func TestPinCoin_ImageFailure(t *testing.T) {
	fake := &fakePinata{failFile: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	client := pinata.NewClientWithHTTP(srv.URL, "test-jwt", srv.Client())

	_, err := client.PinCoin(context.Background(), pinata.CoinContent{Name: "n", Symbol: "S", Image: pngImage()})
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeUploadFailed, appErr.Code)
	assert.Contains(t, appErr.Detail(), "status 401")
	assert.Nil(t, fake.lastJSON)
}

func TestPinCoin_MissingHash(t *testing.T) {
	fake := &fakePinata{failJSON: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	client := pinata.NewClientWithHTTP(srv.URL, "test-jwt", srv.Client())

	_, err := client.PinCoin(context.Background(), pinata.CoinContent{Name: "n", Symbol: "S", Image: pngImage()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata")
	assert.Contains(t, err.Error(), "IpfsHash is empty")
}

func TestURIHelpers(t *testing.T) {
	assert.Equal(t, "ipfs://abc", pinata.NormalizeURI("abc"))
	assert.Equal(t, "ipfs://abc", pinata.NormalizeURI("ipfs://abc"))
	assert.Equal(t, "https://gw.example/ipfs/abc", pinata.GatewayURL("https://gw.example/ipfs/", "ipfs://abc"))
}
