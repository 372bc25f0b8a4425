/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventCampaignCreated EventType = "CampaignCreated"
	EventDonation        EventType = "DonationEvent"
	EventWithdrawal      EventType = "WithdrawalEvent"
	EventCampaignClosed  EventType = "CampaignClosed"
)

// Event is a notification written to the outbox inside the operation's
// transaction and broadcast to sinks after commit.
type Event struct {
	Id          string          `json:"id"`
	Sequence    int64           `json:"sequence"`
	Type        EventType       `json:"type"`
	Campaign    Address         `json:"campaign"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
}

// CampaignCreated is emitted by InitializeCampaign
type CampaignCreated struct {
	Campaign     Address `json:"campaign"`
	Admin        Address `json:"admin"`
	Name         string  `json:"name"`
	TargetAmount uint64  `json:"target_amount"`
	Timestamp    int64   `json:"timestamp"`
}

// DonationEvent is emitted by Donate
type DonationEvent struct {
	Campaign  Address `json:"campaign"`
	Donor     Address `json:"donor"`
	Amount    uint64  `json:"amount"`
	Timestamp int64   `json:"timestamp"`
}

// WithdrawalEvent is emitted by Withdraw. Reason is free text supplied by the admin.
type WithdrawalEvent struct {
	Campaign  Address `json:"campaign"`
	Admin     Address `json:"admin"`
	Amount    uint64  `json:"amount"`
	Reason    string  `json:"reason"`
	Timestamp int64   `json:"timestamp"`
}

// CampaignClosed is emitted by CloseCampaign with the amount returned to the admin.
type CampaignClosed struct {
	Campaign  Address `json:"campaign"`
	Admin     Address `json:"admin"`
	Amount    uint64  `json:"amount"`
	Timestamp int64   `json:"timestamp"`
}

// DecodePayload unmarshals the event payload into the concrete notification
// type matching e.Type.
func (e Event) DecodePayload() (any, error) {
	var target any
	switch e.Type {
	case EventCampaignCreated:
		target = &CampaignCreated{}
	case EventDonation:
		target = &DonationEvent{}
	case EventWithdrawal:
		target = &WithdrawalEvent{}
	case EventCampaignClosed:
		target = &CampaignClosed{}
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return nil, fmt.Errorf("unable to decode %s payload: %w", e.Type, err)
	}
	return target, nil
}
