package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/services"
)

func elksForm(id, message string) url.Values {
	return url.Values{
		"id":        {id},
		"from":      {"+46700000001"},
		"to":        {"+46700000002"},
		"message":   {message},
		"direction": {"incoming"},
		"created":   {"2024-06-15T10:30:00.123456"},
	}
}

func TestReceiveSMS(t *testing.T) {
	ta := newTestApp(t, "")

	resp := ta.formRequest(t, "/elks/sms", elksForm("s1", "hello there"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, services.ReplyGreeting, readBody(t, resp))

	// The record is stored under the gateway id with renamed number fields.
	getResp := ta.jsonRequest(t, http.MethodGet, "/sms/s1", "")
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	body := decodeJSON(t, getResp)
	assert.Equal(t, "+46700000001", body["from_number"])
	assert.Equal(t, "+46700000002", body["to_number"])
	assert.Equal(t, "hello there", body["message"])
	assert.Equal(t, false, body["processed"])

	// Asynchronous processing was enqueued.
	require.Len(t, ta.publisher.tasks, 1)
	assert.Equal(t, models.TaskProcessSMS, ta.publisher.tasks[0].Type)
	assert.Equal(t, "s1", ta.publisher.tasks[0].RecordID)
}

func TestReceiveSMSReplyCategories(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"hi", services.ReplyGreeting},
		{"I need HELP", services.ReplyHelp},
		{"what is my status", services.ReplyStatus},
		{"something else entirely", services.ReplyGeneric},
	}

	for i, tt := range tests {
		ta := newTestApp(t, "")
		resp := ta.formRequest(t, "/elks/sms", elksForm(string(rune('a'+i)), tt.message))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, tt.want, readBody(t, resp), "message %q", tt.message)
	}
}

func TestReceiveSMSInvalid(t *testing.T) {
	ta := newTestApp(t, "")

	t.Run("MissingFields", func(t *testing.T) {
		resp := ta.formRequest(t, "/elks/sms", url.Values{"message": {"hi"}})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Error processing SMS", readBody(t, resp))
	})

	t.Run("BadTimestamp", func(t *testing.T) {
		form := elksForm("s1", "hi")
		form.Set("created", "not-a-timestamp")
		resp := ta.formRequest(t, "/elks/sms", form)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Error processing SMS", readBody(t, resp))
	})

	t.Run("EmptyMessageIsAccepted", func(t *testing.T) {
		form := elksForm("s2", "")
		resp := ta.formRequest(t, "/elks/sms", form)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, services.ReplyGeneric, readBody(t, resp))
	})
}

func TestReceiveSMSEnqueueFailureStillReplies(t *testing.T) {
	ta := newTestApp(t, "")
	ta.publisher.err = assert.AnError

	resp := ta.formRequest(t, "/elks/sms", elksForm("s1", "hello"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, services.ReplyGreeting, readBody(t, resp))

	// Stored even though the queue was down.
	getResp := ta.jsonRequest(t, http.MethodGet, "/sms/s1", "")
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestListSMS(t *testing.T) {
	ta := newTestApp(t, "")

	for _, id := range []string{"s1", "s2", "s3"} {
		resp := ta.formRequest(t, "/elks/sms", elksForm(id, "hi"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := ta.jsonRequest(t, http.MethodGet, "/sms", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, decodeJSONList(t, resp, &list))
	assert.Len(t, list, 3)

	limited := ta.jsonRequest(t, http.MethodGet, "/sms?limit=2", "")
	require.Equal(t, http.StatusOK, limited.StatusCode)
	var short []map[string]any
	require.NoError(t, decodeJSONList(t, limited, &short))
	assert.Len(t, short, 2)
}

func TestGetSMSMissing(t *testing.T) {
	ta := newTestApp(t, "")

	resp := ta.jsonRequest(t, http.MethodGet, "/sms/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SMS not found", decodeJSON(t, resp)["error"])
}

func TestReplySMS(t *testing.T) {
	ta := newTestApp(t, "")

	resp := ta.formRequest(t, "/elks/sms", elksForm("s1", "hi"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ta.publisher.tasks = nil

	t.Run("DefaultsToSender", func(t *testing.T) {
		resp := ta.jsonRequest(t, http.MethodPost, "/sms/s1/reply", `{"message":"on our way"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "queued", decodeJSON(t, resp)["message"])

		require.Len(t, ta.publisher.tasks, 1)
		task := ta.publisher.tasks[0]
		assert.Equal(t, models.TaskSendReply, task.Type)
		assert.Equal(t, "s1", task.RecordID)
		assert.Equal(t, "+46700000001", task.ToNumber)
		assert.Equal(t, "on our way", task.Message)
	})

	t.Run("ExplicitToNumber", func(t *testing.T) {
		ta.publisher.tasks = nil
		resp := ta.jsonRequest(t, http.MethodPost, "/sms/s1/reply",
			`{"message":"fwd","to_number":"+46700000099"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		require.Len(t, ta.publisher.tasks, 1)
		assert.Equal(t, "+46700000099", ta.publisher.tasks[0].ToNumber)
	})

	t.Run("MissingMessage", func(t *testing.T) {
		resp := ta.jsonRequest(t, http.MethodPost, "/sms/s1/reply", `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("MissingRecord", func(t *testing.T) {
		resp := ta.jsonRequest(t, http.MethodPost, "/sms/nope/reply", `{"message":"x"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteSMS(t *testing.T) {
	ta := newTestApp(t, "")

	resp := ta.formRequest(t, "/elks/sms", elksForm("s1", "hi"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	del := ta.jsonRequest(t, http.MethodDelete, "/sms/s1", "")
	assert.Equal(t, http.StatusOK, del.StatusCode)

	again := ta.jsonRequest(t, http.MethodDelete, "/sms/s1", "")
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}
