// Package main provides a simple CLI client for connecting to the livechat WebSocket server.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Event types
const (
	EventChatConnected = "chat_connected"
	EventMessage       = "message"
	EventChatEnded     = "chat_ended"
	EventError         = "error"
)

// ServerEvent is one frame pushed by the server.
type ServerEvent struct {
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}

// MessageData is the payload of a message event.
type MessageData struct {
	InteractionID string    `json:"interaction_id"`
	SessionID     string    `json:"session_id"`
	SenderID      string    `json:"sender_id"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}

// ChatEndedData is the payload of a chat_ended event.
type ChatEndedData struct {
	SessionID string `json:"session_id"`
	EndedBy   string `json:"ended_by"`
}

// SendMessage is the outbound chat frame.
type SendMessage struct {
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
}

// Client represents a WebSocket chat client.
type Client struct {
	conn     *websocket.Conn
	senderID string
	done     chan struct{}
}

// NewClient creates a new client and connects to the server.
func NewClient(addr, senderID string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn:     conn,
		senderID: senderID,
		done:     make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// WaitConnected reads the first frame and verifies the server ack.
func (c *Client) WaitConnected() (string, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("read ack: %w", err)
	}

	var ev ServerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return "", fmt.Errorf("unmarshal ack: %w", err)
	}

	if ev.Event == EventError {
		return "", fmt.Errorf("join failed: %s - %s", ev.Code, ev.Message)
	}

	if ev.Event != EventChatConnected {
		return "", fmt.Errorf("expected %s, got: %s", EventChatConnected, ev.Event)
	}

	var ack struct {
		SessionID string `json:"session_id"`
	}
	json.Unmarshal(ev.Data, &ack)
	return ack.SessionID, nil
}

// SendChat sends a chat message.
func (c *Client) SendChat(text string) error {
	return c.conn.WriteJSON(SendMessage{
		SenderID: c.senderID,
		Message:  text,
	})
}

// ReadMessages reads and prints events from the server.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}

			var ev ServerEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Printf("Unmarshal error: %v", err)
				continue
			}

			switch ev.Event {
			case EventMessage:
				var msg MessageData
				json.Unmarshal(ev.Data, &msg)
				fmt.Printf("\n[%s] %s: %s\n> ", msg.Timestamp.Format("15:04:05"), msg.SenderID, msg.Message)
			case EventChatEnded:
				var ended ChatEndedData
				json.Unmarshal(ev.Data, &ended)
				fmt.Printf("\nSession %s was ended by %s.\n", ended.SessionID, ended.EndedBy)
				return
			case EventError:
				fmt.Printf("\nServer error: %s - %s\n> ", ev.Code, ev.Message)
			default:
				formatted, _ := json.MarshalIndent(ev, "", "  ")
				fmt.Printf("\n[%s] Received:\n%s\n> ", ev.Event, string(formatted))
			}
		}
	}
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080", "livechat server address")
	sessionID := flag.String("session", "", "session ID to join")
	senderID := flag.String("sender", "", "user ID to send as")
	flag.Parse()

	if *sessionID == "" || *senderID == "" {
		log.Fatalf("both -session and -sender are required")
	}

	log.SetFlags(log.Ltime)

	url := fmt.Sprintf("%s/ws/chat/%s?sender_id=%s", *addr, *sessionID, *senderID)
	fmt.Printf("Connecting to %s...\n", url)

	client, err := NewClient(url, *senderID)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	joined, err := client.WaitConnected()
	if err != nil {
		log.Fatalf("Join failed: %v", err)
	}

	fmt.Printf("Joined session: %s\n", joined)
	fmt.Println("\nType a message and press Enter to send.")
	fmt.Println("Commands: /quit to exit")

	// Start reading messages in background
	go client.ReadMessages()

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Read user input
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			if input == "/quit" {
				fmt.Println("Bye!")
				return
			}

			if err := client.SendChat(input); err != nil {
				log.Printf("Send error: %v", err)
				continue
			}
		}
	}
}
