package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/prajeshElEvEn/microauth/internal/common"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = common.NewAppError(common.ErrorValidation, "malformed request body")

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	NewPassword string `json:"newPassword"`
}

// decodeBody fills dst from a JSON or url-encoded form body. formFields maps
// form keys to the string fields of dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, formFields map[string]*string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get(headerContentType))
	if mediaType == contentTypeForm {
		if err := r.ParseForm(); err != nil {
			return errMalformedBody
		}
		for key, field := range formFields {
			*field = r.PostForm.Get(key)
		}
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return errMalformedBody
	}
	return nil
}
