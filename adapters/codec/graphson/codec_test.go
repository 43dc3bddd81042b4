//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package graphson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords(t *testing.T) {
	t.Run("skips blank lines", func(t *testing.T) {
		records := New().Records(strings.NewReader("{\"id\":1}\n\n  \n{\"id\":2}\r\n"), 1024)

		var got []string
		for {
			raw, err := records.Next()
			if err == io.EOF {
				break
			}
			require.Nil(t, err)
			got = append(got, string(raw))
		}
		assert.Equal(t, []string{`{"id":1}`, `{"id":2}`}, got)
	})

	t.Run("record too large", func(t *testing.T) {
		records := New().Records(strings.NewReader(`{"id":"`+strings.Repeat("a", 100)+`"}`), 32)

		_, err := records.Next()
		assert.ErrorIs(t, err, bufio.ErrTooLong)
	})

	t.Run("last line without newline", func(t *testing.T) {
		records := New().Records(strings.NewReader("{\"id\":1}\n{\"id\":2}"), 1024)

		raw, err := records.Next()
		require.Nil(t, err)
		assert.Equal(t, `{"id":1}`, string(raw))
		raw, err = records.Next()
		require.Nil(t, err)
		assert.Equal(t, `{"id":2}`, string(raw))
		_, err = records.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("a byte reader is consumed one line at a time", func(t *testing.T) {
		in := strings.NewReader("{\"id\":1}\n{\"id\":2}\n")

		raw, err := New().Records(in, 1024).Next()
		require.Nil(t, err)
		assert.Equal(t, `{"id":1}`, string(raw))
		assert.Equal(t, len("{\"id\":2}\n"), in.Len())

		raw, err = New().Records(in, 1024).Next()
		require.Nil(t, err)
		assert.Equal(t, `{"id":2}`, string(raw))
	})

	t.Run("plain readers are buffered", func(t *testing.T) {
		in := io.MultiReader(strings.NewReader("{\"id\":1}\n"), strings.NewReader("{\"id\":2}\n"))
		records := New().Records(in, 1024)

		for _, expected := range []string{`{"id":1}`, `{"id":2}`} {
			raw, err := records.Next()
			require.Nil(t, err)
			assert.Equal(t, expected, string(raw))
		}
	})
}

func TestDecode(t *testing.T) {
	c := New()

	t.Run("numbers are kept", func(t *testing.T) {
		tree, err := c.Decode([]byte(`{"id":9007199254740993,"w":0.5}`))
		require.Nil(t, err)
		assert.Equal(t, json.Number("9007199254740993"), tree["id"])
		assert.Equal(t, json.Number("0.5"), tree["w"])
	})

	t.Run("not an object", func(t *testing.T) {
		for _, in := range []string{`[1]`, `null`, `"a"`, `{"a":1} {"b":2}`, `{`} {
			_, err := c.Decode([]byte(in))
			assert.NotNil(t, err, in)
		}
	})
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, New().Encode(&buf, map[string]any{"label": "person", "id": int64(1)}))
	assert.Equal(t, "{\"id\":1,\"label\":\"person\"}\n", buf.String())
}
