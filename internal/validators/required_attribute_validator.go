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

package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
)

type conditionMode int

const (
	modeRequired conditionMode = iota
	modeForbidden
)

// ConditionalRequiredValidator ties a string attribute to the value of another
// root attribute. A dependent attribute missing from the configuration takes
// DefaultValue, the value its schema default would give it.
type ConditionalRequiredValidator struct {
	DependentFieldName string
	ExpectedValue      string
	DefaultValue       string

	mode conditionMode
}

func (v ConditionalRequiredValidator) Description(ctx context.Context) string {
	if v.mode == modeForbidden {
		return fmt.Sprintf("Ensures a value is only set if '%s' equals '%s'.", v.DependentFieldName, v.ExpectedValue)
	}
	return fmt.Sprintf("Ensures a value is set if '%s' equals '%s'.", v.DependentFieldName, v.ExpectedValue)
}

func (v ConditionalRequiredValidator) MarkdownDescription(ctx context.Context) string {
	if v.mode == modeForbidden {
		return fmt.Sprintf("Ensures a value is only set if **%s** equals '%s'.", v.DependentFieldName, v.ExpectedValue)
	}
	return fmt.Sprintf("Ensures a value is set if **%s** equals '%s'.", v.DependentFieldName, v.ExpectedValue)
}

func (v ConditionalRequiredValidator) ValidateString(ctx context.Context, req validator.StringRequest, resp *validator.StringResponse) {
	var dependentFieldValue types.String
	diags := req.Config.GetAttribute(ctx, path.Root(v.DependentFieldName), &dependentFieldValue)
	if diags.HasError() {
		resp.Diagnostics.Append(diags...)
		return
	}

	if dependentFieldValue.IsUnknown() || req.ConfigValue.IsUnknown() {
		return
	}

	dependent := v.DefaultValue
	if !dependentFieldValue.IsNull() {
		dependent = dependentFieldValue.ValueString()
	}
	matches := strings.EqualFold(dependent, v.ExpectedValue)
	set := !req.ConfigValue.IsNull() && req.ConfigValue.ValueString() != ""

	switch v.mode {
	case modeRequired:
		if matches && !dependentFieldValue.IsNull() && !set {
			resp.Diagnostics.AddAttributeError(
				req.Path,
				"Validation Error",
				fmt.Sprintf("Field '%s' is required when '%s' equals '%s'.", req.Path.String(), v.DependentFieldName, v.ExpectedValue),
			)
		}
	case modeForbidden:
		if !matches && set {
			resp.Diagnostics.AddAttributeError(
				req.Path,
				"Validation Error",
				fmt.Sprintf("Field '%s' is only used when '%s' equals '%s', got '%s'.", req.Path.String(), v.DependentFieldName, v.ExpectedValue, dependent),
			)
		}
	}
}

// ChangeToRequired requires the value when dependentFieldName is explicitly
// configured as expectedValue.
func ChangeToRequired(dependentFieldName, expectedValue string) validator.String {
	return ConditionalRequiredValidator{
		DependentFieldName: dependentFieldName,
		ExpectedValue:      expectedValue,
		mode:               modeRequired,
	}
}

// OnlyWhen rejects the value unless dependentFieldName resolves to
// expectedValue. defaultValue stands in for an unset dependent attribute.
func OnlyWhen(dependentFieldName, expectedValue, defaultValue string) validator.String {
	return ConditionalRequiredValidator{
		DependentFieldName: dependentFieldName,
		ExpectedValue:      expectedValue,
		DefaultValue:       defaultValue,
		mode:               modeForbidden,
	}
}
