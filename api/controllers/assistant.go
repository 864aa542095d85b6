package controllers

import (
	"net/http"

	"github.com/amartel/rentaride-backend/api/responses"
	"github.com/amartel/rentaride-backend/api/validators"
	"github.com/amartel/rentaride-backend/pkg/assistant"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/logger"
)

const assistantSystemPrompt = "You are the RentARide booking assistant. Help the user pick a " +
	"rental vehicle, explain deposits and payment steps, and keep answers short. Never invent " +
	"prices or availability."

type assistantChatRequest struct {
	Messages []assistant.Message `json:"messages" validate:"required,min=1,dive"`
}

type assistantChatResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

// AssistantChat proxies a chat turn to the booking assistant.
func AssistantChat(client *assistant.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "assistant not configured"))
			return
		}

		var payload assistantChatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messages := append([]assistant.Message{{Role: "system", Content: assistantSystemPrompt}}, payload.Messages...)
		reply, err := client.Complete(r.Context(), messages)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assistantChatResponse{Reply: reply.Content, Model: reply.Model})
	}
}
