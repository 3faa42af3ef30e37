// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// CallMemberRequest describes one member to add or update on a call.
type CallMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

// UpdateCallMembersRequest is the payload for the update-members operation.
type UpdateCallMembersRequest struct {
	UpdateMembers []CallMemberRequest `json:"update_members,omitempty"`
	RemoveMembers []string            `json:"remove_members,omitempty"`
}

// CallUserResponse is the user info attached to a session participant.
type CallUserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CallSessionParticipant is one connected participant in a call session.
type CallSessionParticipant struct {
	UserSessionID string           `json:"user_session_id"`
	User          CallUserResponse `json:"user"`
}

// CallSessionResponse is the live session portion of a call.
type CallSessionResponse struct {
	ID           string                   `json:"id"`
	Participants []CallSessionParticipant `json:"participants"`
	EndedAt      *string                  `json:"ended_at,omitempty"`
}

// CallResponse is the call portion of a get-call response.
type CallResponse struct {
	CID     string               `json:"cid"`
	Type    string               `json:"type"`
	ID      string               `json:"id"`
	Session *CallSessionResponse `json:"session,omitempty"`
	EndedAt *string              `json:"ended_at,omitempty"`
}

// GetCallResponse is the response of the get-call operation.
type GetCallResponse struct {
	Call CallResponse `json:"call"`
}

func callPath(callType, callID string) string {
	return fmt.Sprintf("/video/call/%s/%s", url.PathEscape(callType), url.PathEscape(callID))
}

// UpdateCallMembers adds or removes members on an existing call. The call is
// never created as a side effect.
func (c *Client) UpdateCallMembers(ctx context.Context, callType, callID string, request *UpdateCallMembersRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPost, callPath(callType, callID)+"/members", request)
	if err != nil {
		return err
	}

	_, err = checkResponse(resp)
	return err
}

// GetCall fetches the call, including its live session if one exists.
func (c *Client) GetCall(ctx context.Context, callType, callID string) (*GetCallResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, callPath(callType, callID), nil)
	if err != nil {
		return nil, err
	}

	body, err := checkResponse(resp)
	if err != nil {
		return nil, err
	}

	var result GetCallResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling get call response: %w", err)
	}
	return &result, nil
}

// EndCall ends the call for every participant.
func (c *Client) EndCall(ctx context.Context, callType, callID string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, callPath(callType, callID)+"/mark_ended", nil)
	if err != nil {
		return err
	}

	_, err = checkResponse(resp)
	return err
}
