package manager

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultSendQueueSize = 64
	wsWriteTimeout       = 5 * time.Second
)

// MessageHandler 上行消息回调，raw 为客户端原始载荷
type MessageHandler func(raw []byte)

// CloseHandler 连接关闭回调，在读写循环退出后执行清理（例如从 manager 注销）
type CloseHandler func()

// Conn 客户端需要的 WebSocket 能力，*websocket.Conn 实现该接口
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client 封装单条 WebSocket 连接。
// send 队列削峰，业务 goroutine 不直接阻塞在网络写上；once 保证 Close 幂等。
type Client struct {
	conn   Conn
	userID string
	connID string
	send   chan []byte
	done   chan struct{}
	once   sync.Once

	roomsMu sync.Mutex
	rooms   map[string]struct{}
}

// NewClient 创建连接包装对象
func NewClient(conn Conn, userID, connID string) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		connID: connID,
		send:   make(chan []byte, defaultSendQueueSize),
		done:   make(chan struct{}),
		rooms:  make(map[string]struct{}),
	}
}

// ConnID 连接唯一 ID
func (c *Client) ConnID() string {
	return c.connID
}

func (c *Client) UserID() string {
	return c.userID
}

// Done 连接关闭信号
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Rooms 当前加入的房间快照
func (c *Client) Rooms() []string {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (c *Client) addRoom(room string) bool {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	if _, ok := c.rooms[room]; ok {
		return false
	}
	c.rooms[room] = struct{}{}
	return true
}

func (c *Client) removeRoom(room string) bool {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	if _, ok := c.rooms[room]; !ok {
		return false
	}
	delete(c.rooms, room)
	return true
}

// Enqueue 将待发送消息投递到写队列。
// 返回 false 表示连接已关闭或队列已满，调用方可选择断开连接或丢弃消息。
func (c *Client) Enqueue(msg []byte) bool {
	if len(msg) == 0 {
		return true
	}
	cloned := append([]byte(nil), msg...)
	select {
	case <-c.done:
		return false
	case c.send <- cloned:
		return true
	default:
		return false
	}
}

// Run 启动读写循环并阻塞到 readLoop 结束，退出时保证调用 Close 和 onClose
func (c *Client) Run(ctx context.Context, onMessage MessageHandler, onClose CloseHandler) {
	defer func() {
		c.Close()
		if onClose != nil {
			onClose()
		}
	}()

	go c.writeLoop(ctx)
	c.readLoop(ctx, onMessage)
}

// Close 幂等关闭连接：先关闭 done 通知读写循环，再关闭底层连接
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// readLoop 退出条件：ctx cancel、连接关闭信号、网络读错误
func (c *Client) readLoop(ctx context.Context, onMessage MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if onMessage != nil {
			onMessage(raw)
		}
	}
}

// writeLoop 每次写设置超时，避免慢连接长期占用写协程
func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		}
	}
}
