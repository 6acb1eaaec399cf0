package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"trotd/internal/domain"

	"github.com/stretchr/testify/assert"
)

func sampleRepos() []*domain.Repo {
	return []*domain.Repo{
		{
			Provider:    "github",
			Name:        "owner/repo",
			Language:    "Go",
			Description: "a useful tool",
			URL:         "https://github.com/owner/repo",
			StarsTotal:  1234,
			StarsToday:  56,
			IsStarred:   true,
		},
		{
			Provider:   "gitlab",
			Name:       "group/proj",
			URL:        "https://gitlab.com/group/proj",
			StarsTotal: 78,
		},
	}
}

func TestRender_MOTD(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, sampleRepos(), FormatMOTD))

	out := buf.String()
	assert.Contains(t, out, "[GH]")
	assert.Contains(t, out, "[GL]")
	assert.Contains(t, out, "owner/repo")
	assert.Contains(t, out, "(Go)")
	assert.Contains(t, out, "★ 1234 (+56 today)")
	assert.Contains(t, out, "⭐") // 星标标记
	assert.Contains(t, out, "https://gitlab.com/group/proj")
}

func TestRender_MOTD_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, nil, FormatMOTD))
	assert.Contains(t, buf.String(), "📭")
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, sampleRepos(), FormatJSON))

	var decoded []*domain.Repo
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "owner/repo", decoded[0].Name)
	assert.True(t, decoded[0].IsStarred)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "长长的描述被…", truncate("长长的描述被截断了", 6))
}
