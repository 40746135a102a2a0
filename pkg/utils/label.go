// Package utils 放置推荐链路各节点共用的小工具。
package utils

import "strings"

// Label 记录候选帖子经过的节点（召回来源、打分模型等），随 Item 透传，用于调试日志。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank
}

// MergeLabel 合并同名标签：Value 去重后以 "|" 连接，Source 去重后以 "," 连接。
func MergeLabel(existing, incoming Label) Label {
	return Label{
		Value:  joinUnique(existing.Value, incoming.Value, "|"),
		Source: joinUnique(existing.Source, incoming.Source, ","),
	}
}

func joinUnique(a, b, sep string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	for _, part := range strings.Split(a, sep) {
		if part == b {
			return a
		}
	}
	return a + sep + b
}
