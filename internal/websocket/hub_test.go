package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trainingdesk/internal/auth"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribe(hub *Hub, actor rbac.Actor) *Client {
	client := &Client{hub: hub, actor: actor, send: make(chan []byte, 4)}
	hub.register <- client
	return client
}

func receive(t *testing.T, client *Client) (Event, bool) {
	t.Helper()
	select {
	case msg := <-client.send:
		var evt Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		return evt, true
	case <-time.After(200 * time.Millisecond):
		return Event{}, false
	}
}

func TestPublishReachesRegisteredClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	client := subscribe(hub, rbac.Actor{ID: uuid.New(), Role: model.RoleStaff})

	hub.Publish(Event{Type: "PAYMENT_APPROVED", Entity: "payment", EntityID: "p-1", Status: "approved"})

	evt, ok := receive(t, client)
	require.True(t, ok, "event not delivered")
	assert.Equal(t, "PAYMENT_APPROVED", evt.Type)
	assert.Equal(t, "approved", evt.Status)
	assert.False(t, evt.At.IsZero())
}

func TestOwnedEventsReachOwnerAndStaffOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	owner := rbac.Actor{ID: uuid.New(), Role: model.RoleTrainer}
	ownerClient := subscribe(hub, owner)
	otherClient := subscribe(hub, rbac.Actor{ID: uuid.New(), Role: model.RoleTrainer})
	staffClient := subscribe(hub, rbac.Actor{ID: uuid.New(), Role: model.RoleStaff})

	hub.Publish(Event{Type: "PAYMENT_REJECTED", Entity: "payment", EntityID: "p-2", OwnerID: owner.ID.String()})

	_, ok := receive(t, ownerClient)
	assert.True(t, ok, "owner should be notified")
	_, ok = receive(t, staffClient)
	assert.True(t, ok, "staff should be notified")
	_, ok = receive(t, otherClient)
	assert.False(t, ok, "another trainer must not see the event")
}

func TestPublishDoesNotBlockWithoutRunLoop(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < queueBuffer+10; i++ {
			hub.Publish(Event{Type: "NOISE"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestServeWs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokens("secret", time.Hour)
	hub := NewHub()
	go hub.Run()

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, tokens) })
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	traineeID := uuid.New()
	token, err := tokens.Issue(traineeID, model.RoleTrainee)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: "WARRANTY_CLAIMED", Entity: "warranty", EntityID: "w-1", OwnerID: uuid.NewString()})
	hub.Publish(Event{Type: "WARRANTY_EXPIRED", Entity: "warranty", EntityID: "w-2", OwnerID: traineeID.String()})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "WARRANTY_EXPIRED")
}
