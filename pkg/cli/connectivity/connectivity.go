/* Copyright 2025 Quill Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package connectivity reports whether the remote service is reachable and
// notifies subscribers when reachability is regained
package connectivity

import (
	"net/http"
	"sync"
	"time"
)

// Monitor reports the current connectivity state. Subscribers registered
// with Notify receive a signal on each offline-to-online transition.
type Monitor interface {
	Online() bool
	Notify(ch chan<- struct{})
	Stop(ch chan<- struct{})
}

// checkTimeout bounds the reachability probe so that an unreachable server
// cannot stall startup
const checkTimeout = 3 * time.Second

// Check reports whether the given endpoint answers over the network. Any
// HTTP response counts as reachable; only a transport failure does not.
func Check(endpoint string) bool {
	hc := http.Client{Timeout: checkTimeout}

	res, err := hc.Head(endpoint)
	if err != nil {
		return false
	}
	res.Body.Close()

	return true
}

// Switch is a Monitor whose state is toggled by the caller. The process
// starts from whatever state the caller sets; transitions to online signal
// every subscriber.
type Switch struct {
	mu     sync.Mutex
	online bool
	subs   []chan<- struct{}
}

// NewSwitch returns a switch in the given initial state
func NewSwitch(online bool) *Switch {
	return &Switch{online: online}
}

// Online reports the current state
func (s *Switch) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.online
}

// SetOnline sets the state. A rising edge signals every subscriber; the
// send is non-blocking so a slow subscriber cannot stall the caller.
func (s *Switch) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasOnline := s.online
	s.online = online

	if online && !wasOnline {
		for _, ch := range s.subs {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Notify registers a subscriber channel. The channel should be buffered;
// signals arriving while the subscriber is busy are coalesced.
func (s *Switch) Notify(ch chan<- struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = append(s.subs, ch)
}

// Stop removes a subscriber channel
func (s *Switch) Stop(ch chan<- struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
}
