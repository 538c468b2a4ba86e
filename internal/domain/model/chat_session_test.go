package model

import "testing"

func snapshot(s *ChatSession) ChatSession { return s.Clone() }

func TestChatSession_ReadsOnSnapshot(t *testing.T) {
	s := NewChatSession("s1", "Getting Started", "hello")
	s.AddMessage(RoleUser, "q1")
	s.AddMessage(RoleAssistant, "a1")
	s.AddMessage(RoleUser, "q2")

	// reads work on the value returned by a store, without an addressable copy
	last, ok := snapshot(s).LastMessage()
	if !ok || last.Content != "q2" || last.Role != RoleUser {
		t.Fatalf("last = %+v ok=%v", last, ok)
	}
	if n := snapshot(s).UserMessageCount(); n != 2 {
		t.Fatalf("user messages = %d", n)
	}

	if _, ok := (ChatSession{}).LastMessage(); ok {
		t.Fatal("empty session has no last message")
	}
}

func TestChatSession_CloneDoesNotAlias(t *testing.T) {
	s := NewChatSession("s1", "t", "hello")
	cp := s.Clone()
	s.AddMessage(RoleUser, "later")
	cp.Messages[0].Content = "changed"

	if len(cp.Messages) != 1 {
		t.Fatalf("clone grew to %d", len(cp.Messages))
	}
	if s.Messages[0].Content != "hello" {
		t.Fatal("clone shares the message slice")
	}
}
