package repository

import (
	"math/rand"
	"time"
)

// getRandomExpireTime 生成带随机抖动的过期时间
// baseExpire: 基础过期时间
// 返回: 基础过期时间 ± 10% 的随机时间
func getRandomExpireTime(baseExpire time.Duration) time.Duration {
	// 计算随机抖动范围（±10%）
	jitterRange := float64(baseExpire) * 0.1
	jitter := time.Duration(rand.Float64()*float64(jitterRange)*2 - float64(jitterRange))

	return baseExpire + jitter
}

// orderByIDs 按 ids 的顺序重排查询结果，不存在的 id 跳过
func orderByIDs[T any](ids []string, items []T, idOf func(T) string) []T {
	index := make(map[string]T, len(items))
	for _, it := range items {
		index[idOf(it)] = it
	}
	out := make([]T, 0, len(items))
	for _, id := range ids {
		if it, ok := index[id]; ok {
			out = append(out, it)
			delete(index, id)
		}
	}
	return out
}
