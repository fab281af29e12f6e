package manager

import "sync"

// ConnectionManager 管理所有在线 WebSocket 连接。
// 维护三套索引：
// - byConn(conn_id) 精确定位单条连接；
// - byUser(user_id -> conn_id -> client) 按用户广播；
// - rooms(room -> conn_id -> client) 按聊天房间广播。
type ConnectionManager struct {
	mu       sync.RWMutex
	byConn   map[string]*Client
	byUser   map[string]map[string]*Client
	rooms    map[string]map[string]*Client
	shutdown bool
}

// NewConnectionManager 创建连接管理器实例
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		byConn: make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
		rooms:  make(map[string]map[string]*Client),
	}
}

// Register 注册一个连接，关闭阶段返回 false
func (m *ConnectionManager) Register(client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return false
	}

	m.byConn[client.ConnID()] = client
	userConns, ok := m.byUser[client.UserID()]
	if !ok {
		userConns = make(map[string]*Client)
		m.byUser[client.UserID()] = userConns
	}
	userConns[client.ConnID()] = client
	return true
}

// Unregister 注销连接并退出其加入的所有房间。
// 只有当索引中的连接与入参一致时才删除。
func (m *ConnectionManager) Unregister(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byConn[client.ConnID()]
	if !ok || current != client {
		return
	}

	delete(m.byConn, client.ConnID())
	if userConns, ok := m.byUser[client.UserID()]; ok {
		delete(userConns, client.ConnID())
		if len(userConns) == 0 {
			delete(m.byUser, client.UserID())
		}
	}
	for _, room := range client.Rooms() {
		client.removeRoom(room)
		m.leaveLocked(client, room)
	}
}

// Join 将连接加入房间，返回 false 表示连接未注册或已在房间中
func (m *ConnectionManager) Join(client *Client, room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.byConn[client.ConnID()]; !ok || current != client {
		return false
	}
	if !client.addRoom(room) {
		return false
	}
	members, ok := m.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		m.rooms[room] = members
	}
	members[client.ConnID()] = client
	return true
}

// Leave 将连接移出房间
func (m *ConnectionManager) Leave(client *Client, room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !client.removeRoom(room) {
		return false
	}
	m.leaveLocked(client, room)
	return true
}

func (m *ConnectionManager) leaveLocked(client *Client, room string) {
	members, ok := m.rooms[room]
	if !ok {
		return
	}
	delete(members, client.ConnID())
	if len(members) == 0 {
		delete(m.rooms, room)
	}
}

// BroadcastRoom 向房间内所有连接发送消息，返回成功入队的连接数
func (m *ConnectionManager) BroadcastRoom(room string, msg []byte) int {
	m.mu.RLock()
	members, ok := m.rooms[room]
	if !ok || len(members) == 0 {
		m.mu.RUnlock()
		return 0
	}
	clients := make([]*Client, 0, len(members))
	for _, client := range members {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	return enqueueAll(clients, msg)
}

// SendToUser 向用户的所有在线连接广播消息，返回成功入队的连接数
func (m *ConnectionManager) SendToUser(userID string, msg []byte) int {
	m.mu.RLock()
	userConns, ok := m.byUser[userID]
	if !ok || len(userConns) == 0 {
		m.mu.RUnlock()
		return 0
	}
	clients := make([]*Client, 0, len(userConns))
	for _, client := range userConns {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	return enqueueAll(clients, msg)
}

func enqueueAll(clients []*Client, msg []byte) int {
	sent := 0
	for _, client := range clients {
		if client.Enqueue(msg) {
			sent++
		}
	}
	return sent
}

// Count 当前在线连接数
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byConn)
}

// RoomSize 房间内连接数
func (m *ConnectionManager) RoomSize(room string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[room])
}

// Shutdown 关闭全部连接并阻止后续注册
func (m *ConnectionManager) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true

	clients := make([]*Client, 0, len(m.byConn))
	for _, client := range m.byConn {
		clients = append(clients, client)
	}
	m.byConn = make(map[string]*Client)
	m.byUser = make(map[string]map[string]*Client)
	m.rooms = make(map[string]map[string]*Client)
	m.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
