package rabbitmq_common

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectInterval = 10 * time.Second

// ConnectionManager держит одно соединение RabbitMQ на процесс и восстанавливает его при обрыве
type ConnectionManager struct {
	url        string
	connection *amqp.Connection
	mutex      sync.RWMutex
	done       chan struct{}
	closeOnce  sync.Once
	Logger     Logger
}

var (
	managerInstance *ConnectionManager
	once            sync.Once
)

// GetManager возвращает общий менеджер соединения, создавая его при первом вызове
func GetManager(url string, logger Logger) (*ConnectionManager, error) {
	var initErr error

	once.Do(func() {
		if logger == nil {
			logger = NewNoopLogger()
		}
		if err := (Config{URL: url}).Validate(); err != nil {
			initErr = err
			return
		}
		managerInstance = &ConnectionManager{
			url:    url,
			done:   make(chan struct{}),
			Logger: logger,
		}
		if _, err := managerInstance.getConnection(); err != nil {
			logger.Error(err, "Initial connection failed")
			initErr = fmt.Errorf("initial connection failed: %w", err)
			return
		}
		go managerInstance.handleReconnect()
	})

	if initErr != nil {
		return nil, initErr
	}
	if managerInstance == nil {
		return nil, fmt.Errorf("connection manager was not initialized")
	}
	return managerInstance, nil
}

func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mutex.RLock()
	if m.connection != nil && !m.connection.IsClosed() {
		m.mutex.RUnlock()
		return m.connection, nil
	}
	m.mutex.RUnlock()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// соединение могли восстановить, пока ждали блокировку
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	m.Logger.Debug("ConnectionManager: Connecting...")
	conn, err := amqp.Dial(m.url)
	if err != nil {
		return nil, fmt.Errorf("ConnectionManager: failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.Logger.Debug("ConnectionManager: Connected successfully!")
	return m.connection, nil
}

// GetChannel открывает новый канал поверх общего соединения
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("ConnectionManager: failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func (m *ConnectionManager) handleReconnect() {
	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}

		m.mutex.RLock()
		healthy := m.connection == nil || !m.connection.IsClosed()
		m.mutex.RUnlock()
		if healthy {
			continue
		}

		m.Logger.Warn("ConnectionManager: Detected closed connection. Attempting to reconnect...")
		if _, err := m.getConnection(); err != nil {
			m.Logger.Error(err, "ConnectionManager: Reconnect failed")
		}
	}
}

// Close останавливает переподключение и закрывает соединение
func (m *ConnectionManager) Close() error {
	m.closeOnce.Do(func() { close(m.done) })

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.connection == nil || m.connection.IsClosed() {
		m.Logger.Debug("ConnectionManager: Connection was already closed or not established.")
		return nil
	}

	if err := m.connection.Close(); err != nil {
		m.Logger.Error(err, "ConnectionManager: Failed to close connection properly")
		return err
	}
	m.Logger.Debug("ConnectionManager: Connection closed successfully.")
	return nil
}
