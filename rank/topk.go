package rank

import "sort"

// TopK 返回概率最高的 limit 个下标，按概率降序；同分时下标小的在前（即特征表中靠前的帖子）。
// limit <= 0 返回空；limit 超过候选数时返回全部。
func TopK(probs []float64, limit int) []int {
	if limit <= 0 || len(probs) == 0 {
		return []int{}
	}
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return probs[idx[a]] > probs[idx[b]]
	})
	if limit < len(idx) {
		idx = idx[:limit]
	}
	return idx
}
