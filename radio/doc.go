// Package radio defines the narrow interface between this core and a
// concrete radio driver: the operations the core calls on the radio,
// and the callbacks the radio calls back into the core.
//
// The split mirrors a transport/subscriber pairing where one side makes
// outbound calls and the other additionally accepts a notification
// handler for unsolicited inbound traffic — the same two-direction
// shape radio drivers need here.
package radio
