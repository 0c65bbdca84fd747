/*
Copyright (c) 2025 Fsas Technologies Inc., or its subsidiaries. All Rights Reserved.

Licensed under the Mozilla Public License Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://mozilla.org/MPL/2.0/


Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bmc

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// profile locates the boot order on a particular family of management
// controllers.
type profile interface {
	fetch(s *session) ([]string, error)
	write(s *session, order []string) error
}

// oemProfile reads a vendor resource that carries the full list of boot
// device names under a single key.
type oemProfile struct {
	path string
	key  string
}

func (p *oemProfile) fetch(s *session) ([]string, error) {
	var body map[string]json.RawMessage
	if err := s.getJSON("fetch", p.path, p.key, &body); err != nil {
		return nil, err
	}

	raw, ok := body[p.key]
	if !ok {
		return nil, &ProtocolError{Host: s.host, Field: p.key, Err: errMissingField}
	}

	var order []string
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, &ProtocolError{Host: s.host, Field: p.key, Err: fmt.Errorf("expected a list of strings: %w", err)}
	}

	return order, nil
}

func (p *oemProfile) write(s *session, order []string) error {
	return s.patch("write", p.path, map[string]interface{}{p.key: order})
}

// standardProfile uses Boot.BootOrder of the computer system. The order holds
// boot option references which are translated to and from the display names
// of the BootOptions collection.
type standardProfile struct {
	systemPath string
}

type systemBoot struct {
	Boot *struct {
		BootOrder   []string `json:"BootOrder"`
		BootOptions *struct {
			ODataID string `json:"@odata.id"`
		} `json:"BootOptions"`
	} `json:"Boot"`
}

type bootOptionCollection struct {
	Members []struct {
		ODataID string `json:"@odata.id"`
	} `json:"Members"`
}

type bootOption struct {
	BootOptionReference string `json:"BootOptionReference"`
	DisplayName         string `json:"DisplayName"`
}

func (p *standardProfile) system(s *session, op string) (*systemBoot, error) {
	var sys systemBoot
	if err := s.getJSON(op, p.systemPath, "Boot", &sys); err != nil {
		return nil, err
	}
	if sys.Boot == nil {
		return nil, &ProtocolError{Host: s.host, Field: "Boot", Err: errMissingField}
	}
	if sys.Boot.BootOrder == nil {
		return nil, &ProtocolError{Host: s.host, Field: "Boot.BootOrder", Err: errMissingField}
	}
	return &sys, nil
}

// options maps boot option references to display names.
func (p *standardProfile) options(s *session, op string, sys *systemBoot) (map[string]string, error) {
	if sys.Boot.BootOptions == nil || sys.Boot.BootOptions.ODataID == "" {
		return nil, &ProtocolError{Host: s.host, Field: "Boot.BootOptions", Err: errMissingField}
	}

	var collection bootOptionCollection
	if err := s.getJSON(op, sys.Boot.BootOptions.ODataID, "Members", &collection); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(collection.Members))
	for _, member := range collection.Members {
		var option bootOption
		if err := s.getJSON(op, member.ODataID, "BootOptionReference", &option); err != nil {
			return nil, err
		}
		if option.BootOptionReference == "" {
			return nil, &ProtocolError{Host: s.host, Field: "BootOptionReference", Err: errMissingField}
		}
		names[option.BootOptionReference] = option.DisplayName
	}

	return names, nil
}

func (p *standardProfile) fetch(s *session) ([]string, error) {
	sys, err := p.system(s, "fetch")
	if err != nil {
		return nil, err
	}

	names, err := p.options(s, "fetch", sys)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(sys.Boot.BootOrder))
	for _, ref := range sys.Boot.BootOrder {
		name, ok := names[ref]
		if !ok || name == "" {
			return nil, &ProtocolError{Host: s.host, Field: "Boot.BootOrder", Err: fmt.Errorf("no display name for boot option %s", ref)}
		}
		order = append(order, name)
	}

	return order, nil
}

func (p *standardProfile) write(s *session, order []string) error {
	sys, err := p.system(s, "write")
	if err != nil {
		return err
	}

	names, err := p.options(s, "write", sys)
	if err != nil {
		return err
	}

	if dup := lo.FindDuplicates(lo.Values(names)); len(dup) > 0 {
		return &ProtocolError{Host: s.host, Field: "DisplayName", Err: fmt.Errorf("boot options share display names: %v", dup)}
	}
	refs := lo.Invert(names)

	bootOrder := make([]string, 0, len(order))
	for _, name := range order {
		ref, ok := refs[name]
		if !ok {
			return &ProtocolError{Host: s.host, Field: "DisplayName", Err: fmt.Errorf("no boot option named %q", name)}
		}
		bootOrder = append(bootOrder, ref)
	}

	return s.patch("write", p.systemPath, map[string]interface{}{
		"Boot": map[string]interface{}{"BootOrder": bootOrder},
	})
}
