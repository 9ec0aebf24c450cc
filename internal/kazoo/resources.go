// SPDX-License-Identifier: MIT

package kazoo

import "context"

// channelVarAuthorizingID is the channel variable holding the device that
// authorized the call leg.
const channelVarAuthorizingID = "Authorizing-ID"

// Recording is a single call recording document from recordings.list.
type Recording struct {
	ID                string            `json:"id"`
	Start             Int64Flex         `json:"start"` // gregorian epoch seconds
	Duration          Int64Flex         `json:"duration"`
	OwnerID           string            `json:"owner_id,omitempty"`
	CallID            string            `json:"call_id,omitempty"`
	CallerIDNumber    string            `json:"caller_id_number,omitempty"`
	CustomChannelVars map[string]string `json:"custom_channel_vars,omitempty"`
}

// AuthorizingID returns the authorizing device identifier from the channel
// variables, or an empty string when absent.
func (r Recording) AuthorizingID() string {
	if r.CustomChannelVars == nil {
		return ""
	}
	return r.CustomChannelVars[channelVarAuthorizingID]
}

// Device is a reference document from device.list.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is a reference document from user.list.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CDR is a call detail record from cdrs.list.
type CDR struct {
	ID             string    `json:"id"`
	CallID         string    `json:"call_id"`
	CallerIDNumber string    `json:"caller_id_number,omitempty"`
	CalleeIDNumber string    `json:"callee_id_number,omitempty"`
	HangupCause    string    `json:"hangup_cause,omitempty"`
	Timestamp      Int64Flex `json:"timestamp,omitempty"`
}

var (
	recordingsResource = resource{label: "Recordings", operation: "recordings.list", path: "/recordings"}
	cdrsResource       = resource{label: "CDRs", operation: "cdrs.list", path: "/cdrs"}
	devicesResource    = resource{label: "Device", operation: "device.list", path: "/devices"}
	usersResource      = resource{label: "User", operation: "user.list", path: "/users"}
)

// ListRecordings drains every page of the account's recordings.
func (c *Client) ListRecordings(ctx context.Context) ([]Recording, error) {
	return fetchAll[Recording](ctx, c, recordingsResource, nil)
}

// ListCDRs drains every page of the account's call detail records.
func (c *Client) ListCDRs(ctx context.Context) ([]CDR, error) {
	return fetchAll[CDR](ctx, c, cdrsResource, nil)
}

// ListDevices drains every page of the account's devices.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	return fetchAll[Device](ctx, c, devicesResource, nil)
}

// ListUsers drains every page of the account's users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return fetchAll[User](ctx, c, usersResource, nil)
}
