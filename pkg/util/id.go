package util

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// InitSnowflake 初始化雪花算法节点，多实例部署时 nodeID 需唯一（0~1023）
func InitSnowflake(nodeID int64) {
	snowflakeOnce.Do(func() {
		node, err := snowflake.NewNode(nodeID)
		if err != nil {
			// 节点号越界时退回 0 号节点
			node, _ = snowflake.NewNode(0)
		}
		snowflakeNode = node
	})
}

// GenIDString 生成字符串形式的雪花 ID，用作用户与消息的 _id
func GenIDString() string {
	if snowflakeNode == nil {
		InitSnowflake(1)
	}
	return snowflakeNode.Generate().String()
}
