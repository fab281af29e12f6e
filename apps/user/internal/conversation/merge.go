package conversation

import (
	"sort"

	"DateServer/model"
)

// RoomKey 两个用户的房间号：按字符串序排列后以下划线连接，与方向无关
func RoomKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// Merge 合并两人各自的消息日志：只保留两人之间的消息，按 ID 去重（保留先出现的一条），
// 再按时间戳升序稳定排序。时间戳相同的消息保持合并前的相对顺序。
func Merge(userA, userB string, logs ...[]model.Message) []model.Message {
	seen := make(map[string]struct{})
	out := make([]model.Message, 0)
	for _, msgs := range logs {
		for _, m := range msgs {
			if !m.Between(userA, userB) {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
