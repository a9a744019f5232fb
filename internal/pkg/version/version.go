/*
 * @Description: 构建版本信息，优先使用 ldflags 注入的值，其次读取 VCS 构建信息
 * @Author: yzcheng90
 * @Date: 2025-11-18 09:12:30
 * @LastEditTime: 2025-11-21 10:02:44
 * @LastEditors: yzcheng90
 */
package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// 构建时通过 -ldflags "-X .../version.Version=v1.0.0" 注入
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo 包含构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Dirty     bool   `json:"dirty"`
	GoVersion string `json:"goVersion"`
}

// GetBuildInfo 返回详细的构建信息
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if (info.Version == "dev" || info.Version == "") && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" || info.Commit == "" {
				info.Commit = shortCommit(s.Value)
			}
		case "vcs.time":
			if info.Date == "unknown" || info.Date == "" {
				info.Date = formatDate(s.Value)
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// String 返回形如 "v1.0.0, commit abc1234, built at 2025-11-21 10:02:44" 的版本字符串
func (b BuildInfo) String() string {
	parts := []string{b.Version}
	if b.Commit != "unknown" && b.Commit != "" {
		commit := "commit " + b.Commit
		if b.Dirty {
			commit += "-dirty"
		}
		parts = append(parts, commit)
	}
	if b.Date != "unknown" && b.Date != "" {
		parts = append(parts, "built at "+b.Date)
	}
	return strings.Join(parts, ", ")
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func formatDate(raw string) string {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format("2006-01-02 15:04:05")
	}
	return raw
}
