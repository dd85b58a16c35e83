package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/buger/jsonparser"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxMultipartMemory = 32 << 20

// readContextFields is readRequestFields for Gin. The JSON body is buffered
// under gin.BodyBytesKey so ShouldBindBodyWith and later reads see it.
func readContextFields(c *gin.Context, names ...string) (map[string]string, error) {
	found := make(map[string]string, len(names))

	if c.ContentType() == binding.MIMEJSON {
		raw, err := c.GetRawData()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		c.Set(gin.BodyBytesKey, raw)
		for _, name := range names {
			if v, ok := jsonField(raw, name); ok {
				found[name] = v
			}
		}
	} else {
		for _, name := range names {
			if v, ok := c.GetPostForm(name); ok {
				found[name] = v
			}
		}
	}

	for _, name := range names {
		if _, ok := found[name]; ok {
			continue
		}
		if v, ok := c.GetQuery(name); ok {
			found[name] = v
		}
	}
	return found, nil
}

// readRequestFields returns the values of the named fields carried by r.
// Body values (JSON, urlencoded or multipart) win over query values. A JSON
// body is buffered and restored on r so later handlers can read it again; the
// buffered bytes are returned. A JSON null counts as absent.
func readRequestFields(r *http.Request, names ...string) (map[string]string, []byte, error) {
	found := make(map[string]string, len(names))

	var raw []byte
	if isJSONRequest(r) && r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("read request body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(b))
		raw = b
		for _, name := range names {
			if v, ok := jsonField(raw, name); ok {
				found[name] = v
			}
		}
	} else if hasBody(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, fmt.Errorf("parse request form: %w", err)
		}
		for _, name := range names {
			if vs, ok := r.PostForm[name]; ok && len(vs) > 0 {
				found[name] = vs[0]
			}
		}
	}

	query := r.URL.Query()
	for _, name := range names {
		if _, ok := found[name]; ok {
			continue
		}
		if vs, ok := query[name]; ok && len(vs) > 0 {
			found[name] = vs[0]
		}
	}
	return found, raw, nil
}

// jsonField extracts a top-level field of a JSON object. Strings are
// unescaped; numbers, booleans, objects and arrays keep their JSON text.
func jsonField(raw []byte, name string) (string, bool) {
	value, dataType, _, err := jsonparser.Get(raw, name)
	if err != nil {
		return "", false
	}
	switch dataType {
	case jsonparser.NotExist, jsonparser.Null:
		return "", false
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return "", false
		}
		return s, true
	default:
		return string(value), true
	}
}

func isJSONRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.Body != nil && r.Body != http.NoBody
	}
	return false
}
