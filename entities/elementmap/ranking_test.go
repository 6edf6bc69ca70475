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

package elementmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingFromMedia(t *testing.T) {
	t.Run("converts a parsed rankings payload", func(t *testing.T) {
		var payload interface{}
		require.Nil(t, json.Unmarshal([]byte(`{"tank": ["e3", "e1", "e0"], "size": ["e0"]}`), &payload))

		ranking, err := RankingFromMedia(payload)
		require.Nil(t, err)
		assert.Equal(t, Ranking{
			"tank": {"e3", "e1", "e0"},
			"size": {"e0"},
		}, ranking)
	})

	t.Run("rejects a non-object payload", func(t *testing.T) {
		_, err := RankingFromMedia([]interface{}{"e1"})
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "want an object")
	})

	t.Run("rejects a key whose value is not a list", func(t *testing.T) {
		_, err := RankingFromMedia(map[string]interface{}{"tank": "e1"})
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), `ranking "tank"`)
	})

	t.Run("rejects non-string ids", func(t *testing.T) {
		_, err := RankingFromMedia(map[string]interface{}{"tank": []interface{}{1.0}})
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "want a string id")
	})

	t.Run("empty payload yields an empty ranking", func(t *testing.T) {
		ranking, err := RankingFromMedia(map[string]interface{}{})
		require.Nil(t, err)
		assert.Empty(t, ranking)
	})
}

func TestParseMedia(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		content, err := ParseMedia("x.json", []byte(`{"v": 1}`))
		require.Nil(t, err)
		assert.Equal(t, map[string]interface{}{"v": float64(1)}, content)
	})

	t.Run("yaml", func(t *testing.T) {
		content, err := ParseMedia("x.yaml", []byte("v: 1\n"))
		require.Nil(t, err)
		assert.Equal(t, map[string]interface{}{"v": 1}, content)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseMedia("x.json", []byte(`{`))
		assert.NotNil(t, err)
	})

	t.Run("unrecognized suffix", func(t *testing.T) {
		_, err := ParseMedia("x.png", []byte{0x89})
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "unrecognized media suffix")
	})
}

func TestRecognizedSuffix(t *testing.T) {
	suffixes := []string{".json", ".yaml"}

	assert.True(t, RecognizedSuffix("a.json", suffixes))
	assert.True(t, RecognizedSuffix("deep/key/b.yaml", suffixes))
	assert.False(t, RecognizedSuffix("c.txt", suffixes))
	assert.False(t, RecognizedSuffix("noext", suffixes))
}
