package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"trotd/internal/domain"
)

// Format 输出格式
type Format int

const (
	// FormatMOTD 终端友好的每日一报格式
	FormatMOTD Format = iota
	// FormatJSON 机器可读的 JSON 数组
	FormatJSON
)

// providerIcons 各平台在 MOTD 里的标记
var providerIcons = map[string]string{
	"github": "[GH]",
	"gitlab": "[GL]",
	"gitea":  "[GE]",
}

// Render 把合并后的项目列表写到 w
func Render(w io.Writer, repos []*domain.Repo, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(repos)
	}
	renderMOTD(w, repos)
	return nil
}

// renderMOTD 输出 MOTD 风格的榜单
func renderMOTD(w io.Writer, repos []*domain.Repo) {
	if len(repos) == 0 {
		fmt.Fprintln(w, "📭 今天没有新的趋势项目")
		return
	}

	fmt.Fprintln(w, "🔥 今日趋势项目")
	fmt.Fprintln(w, strings.Repeat("─", 60))

	for _, repo := range repos {
		icon := providerIcons[repo.Provider]
		if icon == "" {
			icon = "[??]"
		}

		star := " "
		if repo.IsStarred {
			star = "⭐"
		}

		fmt.Fprintf(w, "%s%s %s", icon, star, repo.Name)
		if repo.Language != "" {
			fmt.Fprintf(w, "  (%s)", repo.Language)
		}
		fmt.Fprintf(w, "  %s\n", formatStars(repo))

		if repo.Description != "" {
			fmt.Fprintf(w, "     %s\n", truncate(repo.Description, 100))
		}
		fmt.Fprintf(w, "     %s\n", repo.URL)
	}
}

// formatStars 拼 Star 数展示，有当日增量时一并展示
func formatStars(repo *domain.Repo) string {
	if repo.StarsToday > 0 {
		return fmt.Sprintf("★ %d (+%d today)", repo.StarsTotal, repo.StarsToday)
	}
	return fmt.Sprintf("★ %d", repo.StarsTotal)
}

// truncate 按字符截断字符串，超长加省略号
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
