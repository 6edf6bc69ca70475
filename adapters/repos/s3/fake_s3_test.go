//       _
//   ___| | ___ _ __ ___   __ _ _ __
//  / _ \ |/ _ \ '_ ` _ \ / _` | '_ \
// |  __/ |  __/ | | | | | (_| | |_) |
//  \___|_|\___|_| |_| |_|\__,_| .__/
//                              |_|
//
//  Copyright © 2019 - 2025 Elemap B.V. All rights reserved.
//
//  CONTACT: hello@elemap.io
//

package s3

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
)

// fakeS3 is a minimal in-memory object store speaking just enough of the
// ListObjectsV2 and GetObject wire protocol for the client under test. It
// serves a single bucket and never truncates listings.
type fakeS3 struct {
	bucket  string
	objects map[string][]byte
}

func newFakeS3(t *testing.T, bucket string, objects map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(&fakeS3{bucket: bucket, objects: objects})
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *minio.Client {
	t.Helper()
	client, err := minio.New(strings.TrimPrefix(server.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("elemap", "elemap-secret", ""),
		Secure: false,
	})
	require.Nil(t, err)
	return client
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/"+f.bucket || r.URL.Path == "/"+f.bucket+"/" {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			f.list(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/"+f.bucket+"/") {
		f.keyNotFound(w, r.URL.Path)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/"+f.bucket+"/")
	data, ok := f.objects[key]
	if !ok {
		f.keyNotFound(w, key)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("ETag", `"fake-etag"`)
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	_, _ = w.Write(data)
}

type listEntry struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int    `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

type listCommonPrefix struct {
	Prefix string `xml:"Prefix"`
}

type listResult struct {
	XMLName        xml.Name           `xml:"ListBucketResult"`
	Name           string             `xml:"Name"`
	Prefix         string             `xml:"Prefix"`
	Delimiter      string             `xml:"Delimiter,omitempty"`
	KeyCount       int                `xml:"KeyCount"`
	MaxKeys        int                `xml:"MaxKeys"`
	IsTruncated    bool               `xml:"IsTruncated"`
	Contents       []listEntry        `xml:"Contents"`
	CommonPrefixes []listCommonPrefix `xml:"CommonPrefixes"`
}

func (f *fakeS3) list(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	delimiter := r.URL.Query().Get("delimiter")

	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	result := listResult{
		Name:      f.bucket,
		Prefix:    prefix,
		Delimiter: delimiter,
		MaxKeys:   1000,
	}
	seen := map[string]bool{}
	for _, key := range keys {
		rest := key[len(prefix):]
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				folded := prefix + rest[:i+len(delimiter)]
				if !seen[folded] {
					seen[folded] = true
					result.CommonPrefixes = append(result.CommonPrefixes,
						listCommonPrefix{Prefix: folded})
				}
				continue
			}
		}
		result.Contents = append(result.Contents, listEntry{
			Key:          key,
			LastModified: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
			ETag:         `"fake-etag"`,
			Size:         len(f.objects[key]),
			StorageClass: "STANDARD",
		})
	}
	result.KeyCount = len(result.Contents) + len(result.CommonPrefixes)

	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(result)
}

func (f *fakeS3) keyNotFound(w http.ResponseWriter, key string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(struct {
		XMLName xml.Name `xml:"Error"`
		Code    string   `xml:"Code"`
		Message string   `xml:"Message"`
		Key     string   `xml:"Key"`
	}{
		Code:    "NoSuchKey",
		Message: "The specified key does not exist.",
		Key:     key,
	})
}
