package ws

import (
	"context"
	"sync"

	"placement_backend/internal/logger"
)

// WebSocketManager хранит подключения пользователей. У одного пользователя
// может быть несколько вкладок, поэтому на userID приходится набор клиентов.
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает регистрацию клиентов до отмены контекста
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer close(manager.done)

	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			set, ok := manager.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				manager.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			connections := len(set)
			manager.mu.Unlock()
			logger.Debug("WebSocket client registered", "user_id", client.UserID, "connections", connections)

		case client := <-manager.unregister:
			manager.remove(client)

		case <-ctx.Done():
			manager.mu.Lock()
			for userID, set := range manager.clients {
				for client := range set {
					close(client.Send)
				}
				delete(manager.clients, userID)
			}
			manager.mu.Unlock()
			logger.Info("WebSocket manager stopped")
			return
		}
	}
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	set, ok := manager.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	close(client.Send)
	delete(set, client)
	if len(set) == 0 {
		delete(manager.clients, client.UserID)
	}
	logger.Debug("WebSocket client unregistered", "user_id", client.UserID, "connections", len(set))
}

// Register добавляет клиента, false если менеджер уже остановлен
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

// Unregister не блокируется после остановки менеджера
func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

// SendToUser отправляет payload во все подключения пользователя.
// Клиент с заполненным буфером отключается.
func (manager *WebSocketManager) SendToUser(userID string, payload interface{}) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	for client := range manager.clients[userID] {
		select {
		case client.Send <- payload:
		default:
			logger.Warn("WebSocket client is too slow, disconnecting", "user_id", userID)
			go manager.Unregister(client)
		}
	}
}

// ConnectionCount - количество подключений пользователя
func (manager *WebSocketManager) ConnectionCount(userID string) int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID])
}

// IsClientConnected проверяет, есть ли у пользователя хотя бы одно подключение
func (manager *WebSocketManager) IsClientConnected(userID string) bool {
	return manager.ConnectionCount(userID) > 0
}

// GetClientCount возвращает количество пользователей онлайн
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}
