package svc

import (
	"context"
	"encoding/json"
	"testing"

	"DateServer/config"
	"DateServer/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateWithoutRedis(t *testing.T) {
	util.InitJWT(config.DefaultJWTConfig())
	s := NewConnectService(nil)

	_, err := s.Authenticate(context.Background(), "  ", "c1", "10.0.0.1")
	assert.ErrorIs(t, err, ErrTokenRequired)

	_, err = s.Authenticate(context.Background(), "not-a-jwt", "c1", "10.0.0.1")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	token, err := util.GenerateToken("alice")
	require.NoError(t, err)
	session, err := s.Authenticate(context.Background(), token, "c1", " 10.0.0.1 ")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.UserID)
	assert.Equal(t, "c1", session.ConnID)
	assert.Equal(t, "10.0.0.1", session.ClientIP)
}

func TestResolveRoom(t *testing.T) {
	s := NewConnectService(nil)
	bob := &Session{UserID: "bob", ConnID: "c1"}

	room, err := s.ResolveRoom(bob, json.RawMessage(`{"senderId":"bob","receiverId":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "alice_bob", room)

	room, err = s.ResolveRoom(bob, json.RawMessage(`{"senderId":"alice","receiverId":"bob"}`))
	require.NoError(t, err)
	assert.Equal(t, "alice_bob", room, "room key does not depend on direction")

	_, err = s.ResolveRoom(bob, json.RawMessage(`{"senderId":"alice","receiverId":"carol"}`))
	assert.ErrorIs(t, err, ErrNotRoomMember)

	_, err = s.ResolveRoom(bob, json.RawMessage(`{"senderId":"bob"}`))
	assert.ErrorIs(t, err, ErrRoomMembersRequired)

	_, err = s.ResolveRoom(bob, nil)
	assert.ErrorIs(t, err, ErrRoomMembersRequired)

	_, err = s.ResolveRoom(bob, json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestParseAndMarshalEnvelope(t *testing.T) {
	s := NewConnectService(nil)

	env, err := s.ParseEnvelope([]byte(`{"type":" joinRoom ","data":{"senderId":"a","receiverId":"b"}}`))
	require.NoError(t, err)
	assert.Equal(t, "joinRoom", env.Type)
	assert.JSONEq(t, `{"senderId":"a","receiverId":"b"}`, string(env.Data))

	_, err = s.ParseEnvelope([]byte(`{"data":{}}`))
	assert.Error(t, err)
	_, err = s.ParseEnvelope([]byte(`nope`))
	assert.Error(t, err)

	raw, err := s.MarshalEnvelope("heartbeat_ack", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"heartbeat_ack"}`, string(raw))

	raw, err = s.MarshalEnvelope("joinedRoom", RoomData{Room: "a_b"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"joinedRoom","data":{"room":"a_b"}}`, string(raw))
}

func TestPresenceHooksWithoutRedis(t *testing.T) {
	s := NewConnectService(nil)
	session := &Session{UserID: "alice", ConnID: "c1"}
	// Redis 未启用时不应 panic
	s.OnConnect(context.Background(), session)
	s.OnHeartbeat(context.Background(), session)
	s.OnDisconnect(context.Background(), session)
}
