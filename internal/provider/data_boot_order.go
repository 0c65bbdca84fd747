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

package provider

import (
	"context"
	"errors"
	"fmt"

	"terraform-provider-efibootorder/internal/bmc"
	"terraform-provider-efibootorder/internal/bootorder"
	"terraform-provider-efibootorder/internal/models"
	"terraform-provider-efibootorder/internal/validators"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &BootOrderDataSource{}

func NewBootOrderDataSource() datasource.DataSource {
	return &BootOrderDataSource{}
}

// BootOrderDataSource defines the data source implementation.
type BootOrderDataSource struct {
	p *EfibootorderProvider
}

func (d *BootOrderDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + bootOrderName
}

func BootOrderDataSourceSchema() map[string]schema.Attribute {
	return map[string]schema.Attribute{
		"id": schema.StringAttribute{
			Computed:    true,
			Description: "Host name of the managed server",
		},
		"rules": schema.SingleNestedAttribute{
			Optional:    true,
			Description: rulesMD,
			Attributes: map[string]schema.Attribute{
				"network": schema.StringAttribute{Optional: true, Description: "Substring of the network boot entry"},
				"disk":    schema.StringAttribute{Optional: true, Description: "Substring of the disk boot entry"},
				"shell":   schema.StringAttribute{Optional: true, Description: "Substring of the EFI shell boot entry"},
			},
		},
		"profile": schema.StringAttribute{
			Optional:    true,
			Description: "Where the boot order is stored, 'oem' (default) or 'standard'",
			Validators: []validator.String{
				stringvalidator.OneOf(bmc.ProfileOEM, bmc.ProfileStandard),
			},
		},
		"oem_path": schema.StringAttribute{
			Optional:    true,
			Description: "Vendor boot order resource",
			Validators: []validator.String{
				validators.ChangeToRequired("profile", bmc.ProfileOEM),
				validators.OnlyWhen("profile", bmc.ProfileOEM, bmc.ProfileOEM),
			},
		},
		"oem_key": schema.StringAttribute{
			Optional:    true,
			Description: "Property of the vendor resource holding the boot order",
			Validators: []validator.String{
				validators.OnlyWhen("profile", bmc.ProfileOEM, bmc.ProfileOEM),
			},
		},
		"boot_order": schema.ListAttribute{
			Computed:    true,
			ElementType: types.StringType,
			Description: "Persisted boot order of the system",
		},
		"positions": schema.MapAttribute{
			Computed:    true,
			ElementType: types.Int64Type,
			Description: "Index of the network, disk and shell entries in boot_order",
		},
		"compliant": schema.BoolAttribute{
			Computed:    true,
			Description: "Whether network, disk and shell entries are in that relative order",
		},
		"planned_order": schema.ListAttribute{
			Computed:    true,
			ElementType: types.StringType,
			Description: "Boot order the resource would write, equal to boot_order when compliant",
		},
	}
}

func (d *BootOrderDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Data source for checking the persisted boot order of a server.",
		Attributes:          BootOrderDataSourceSchema(),
		Blocks:              RedfishServerDatasourceBlockMap(),
	}
}

func (d *BootOrderDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	// Prevent panic if the provider has not been configured.
	if req.ProviderData == nil {
		return
	}

	p, ok := req.ProviderData.(*EfibootorderProvider)

	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Data Source Configure Type",
			fmt.Sprintf("Expected *EfibootorderProvider, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)

		return
	}

	d.p = p
}

func positionsToMap(positions bootorder.Positions) (types.Map, error) {
	values := make(map[string]attr.Value, len(positions))
	for class, index := range positions {
		values[class.String()] = types.Int64Value(int64(index))
	}

	m, diags := types.MapValue(types.Int64Type, values)
	if diags.HasError() {
		return m, errors.New("unable to convert boot entry positions")
	}
	return m, nil
}

func (d *BootOrderDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	tflog.Info(ctx, "data-boot_order: read starts")

	var data models.BootOrderDataSourceModel
	diags := req.Config.Get(ctx, &data)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		tflog.Error(ctx, "Error parsing configuration data")
		return
	}

	rules, err := rulesFromModel(data.Rules)
	if err != nil {
		resp.Diagnostics.AddError("Invalid boot entry rules", err.Error())
		return
	}

	client, host, err := NewBootOrderClient(d.p, &data.RedfishServer, bootOrderSettings{
		Rules:   data.Rules,
		Profile: data.Profile,
		OemPath: data.OemPath,
		OemKey:  data.OemKey,
	})
	if err != nil {
		resp.Diagnostics.AddError("Service Connection Error", err.Error())
		return
	}

	mutexPool.Lock(ctx, client.CanonicalHost(host), "data-boot_order")
	order, err := client.Fetch(ctx, host)
	mutexPool.Unlock(ctx, client.CanonicalHost(host), "data-boot_order")
	if err != nil {
		resp.Diagnostics.AddError("Error Fetching Boot Order", err.Error())
		return
	}

	positions, err := bootorder.Classify(order, rules)
	if err != nil {
		resp.Diagnostics.AddError("Error Classifying Boot Order", fmt.Sprintf("%s: %s", host, err.Error()))
		return
	}

	bootOrder, diags := orderToList(order)
	resp.Diagnostics.Append(diags...)
	plannedOrder, diags := orderToList(bootorder.Plan(order, positions))
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	positionMap, err := positionsToMap(positions)
	if err != nil {
		resp.Diagnostics.AddError("Error Converting Positions", err.Error())
		return
	}

	data.Id = types.StringValue(host)
	data.BootOrder = bootOrder
	data.PlannedOrder = plannedOrder
	data.Positions = positionMap
	data.Compliant = types.BoolValue(bootorder.IsOrdered(positions))

	diags = resp.State.Set(ctx, &data)
	resp.Diagnostics.Append(diags...)

	tflog.Info(ctx, "data-boot_order: read ends")
}
