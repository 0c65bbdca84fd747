// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"bytes"
	"context"
	"fmt"

	"terraform-provider-efibootorder/internal/bmc"
	"terraform-provider-efibootorder/internal/models"
	"terraform-provider-efibootorder/internal/remediation"
	"terraform-provider-efibootorder/internal/validators"

	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64default"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringdefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &BootOrderResource{}

func NewBootOrderResource() resource.Resource {
	return &BootOrderResource{}
}

// BootOrderResource defines the resource implementation.
type BootOrderResource struct {
	p *EfibootorderProvider
}

func (r *BootOrderResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + bootOrderName
}

func BootOrderSchema() map[string]schema.Attribute {
	return map[string]schema.Attribute{
		"id": schema.StringAttribute{
			Computed:            true,
			MarkdownDescription: "Host name of the managed server.",
			Description:         "Host name of the managed server.",
			PlanModifiers: []planmodifier.String{
				stringplanmodifier.UseStateForUnknown(),
			},
		},
		"rules": schema.SingleNestedAttribute{
			Optional:            true,
			MarkdownDescription: rulesMD,
			Description:         rulesMD,
			Attributes: map[string]schema.Attribute{
				"network": schema.StringAttribute{
					Optional:    true,
					Description: "Substring of the network boot entry, defaults to 'F0) UEFI PXE IPv4'.",
					Validators:  []validator.String{stringvalidator.LengthAtLeast(1)},
				},
				"disk": schema.StringAttribute{
					Optional:    true,
					Description: "Substring of the disk boot entry, defaults to 'UEFI Hard Disk'.",
					Validators:  []validator.String{stringvalidator.LengthAtLeast(1)},
				},
				"shell": schema.StringAttribute{
					Optional:    true,
					Description: "Substring of the EFI shell boot entry, defaults to 'EFI Shell'.",
					Validators:  []validator.String{stringvalidator.LengthAtLeast(1)},
				},
			},
		},
		"profile": schema.StringAttribute{
			Optional:            true,
			Computed:            true,
			Default:             stringdefault.StaticString(bmc.ProfileOEM),
			MarkdownDescription: "Where the boot order is stored: `oem` for a vendor resource holding the list of boot entry names, `standard` for `Boot.BootOrder` of the computer system.",
			Description:         "Where the boot order is stored: 'oem' for a vendor resource holding the list of boot entry names, 'standard' for Boot.BootOrder of the computer system.",
			Validators: []validator.String{
				stringvalidator.OneOf(bmc.ProfileOEM, bmc.ProfileStandard),
			},
		},
		"oem_path": schema.StringAttribute{
			Optional:    true,
			Description: "Vendor boot order resource, required when profile is explicitly 'oem'.",
			Validators: []validator.String{
				validators.ChangeToRequired("profile", bmc.ProfileOEM),
				validators.OnlyWhen("profile", bmc.ProfileOEM, bmc.ProfileOEM),
			},
		},
		"oem_key": schema.StringAttribute{
			Optional:    true,
			Description: "Property of the vendor resource holding the boot order, defaults to 'FixedBootOrder'.",
			Validators: []validator.String{
				validators.OnlyWhen("profile", bmc.ProfileOEM, bmc.ProfileOEM),
			},
		},
		"system_reset_type": schema.StringAttribute{
			Optional:            true,
			Computed:            true,
			Default:             stringdefault.StaticString("GracefulRestart"),
			MarkdownDescription: "Control how system will be reset to finish boot order change (powered off hosts are powered on).",
			Description:         "Control how system will be reset to finish boot order change (powered off hosts are powered on).",
			Validators: []validator.String{
				stringvalidator.OneOf([]string{
					"ForceRestart",
					"GracefulRestart",
					"PowerCycle",
				}...),
			},
		},
		"system_reset_timeout": schema.Int64Attribute{
			Optional:            true,
			Computed:            true,
			Default:             int64default.StaticInt64(0),
			Description:         "Timeout in seconds to wait for the host to be powered on after reset, 0 does not wait.",
			MarkdownDescription: "Timeout in seconds to wait for the host to be powered on after reset, 0 does not wait.",
			Validators: []validator.Int64{
				int64validator.AtLeast(0),
			},
		},
		"boot_order": schema.ListAttribute{
			Computed:            true,
			ElementType:         types.StringType,
			MarkdownDescription: "Boot order read back after the resource has been applied.",
			Description:         "Boot order read back after the resource has been applied.",
		},
		"compliant": schema.BoolAttribute{
			Computed:    true,
			Description: "Whether network, disk and EFI shell entries are in that relative order.",
		},
		"outcome": schema.StringAttribute{
			Computed:    true,
			Description: "Result of the last remediation: 'compliant' if nothing was written, 'fixed' otherwise.",
		},
	}
}

func (r *BootOrderResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "The resource keeps the PXE network entry before the hard disk and the hard disk before the EFI shell in the persisted boot order of a server. A non-compliant order is rewritten and the host is reset.",
		Description:         "The resource keeps the PXE network entry before the hard disk and the hard disk before the EFI shell in the persisted boot order of a server. A non-compliant order is rewritten and the host is reset.",
		Attributes:          BootOrderSchema(),
		Blocks:              RedfishServerResourceBlockMap(),
	}
}

func (r *BootOrderResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	// Prevent panic if the provider has not been configured.
	if req.ProviderData == nil {
		return
	}

	p, ok := req.ProviderData.(*EfibootorderProvider)

	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Resource Configure Type",
			fmt.Sprintf("Expected *EfibootorderProvider, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)

		return
	}

	r.p = p
}

func settingsFromResource(model *models.BootOrderResourceModel) bootOrderSettings {
	return bootOrderSettings{
		Rules:        model.Rules,
		Profile:      model.Profile,
		OemPath:      model.OemPath,
		OemKey:       model.OemKey,
		ResetType:    model.SystemResetType,
		ResetTimeout: model.SystemResetTimeout,
	}
}

// runBootOrder runs one remediation cycle for the server of model.
func (r *BootOrderResource) runBootOrder(ctx context.Context, model *models.BootOrderResourceModel, fix bool) (result remediation.HostResult, diags diag.Diagnostics) {
	rules, err := rulesFromModel(model.Rules)
	if err != nil {
		diags.AddError("Invalid boot entry rules", err.Error())
		return result, diags
	}

	client, host, err := NewBootOrderClient(r.p, &model.RedfishServer, settingsFromResource(model))
	if err != nil {
		diags.AddError("service error: ", err.Error())
		return result, diags
	}

	var out bytes.Buffer
	controller, err := remediation.New(client, remediation.Options{
		Rules: rules,
		Fix:   fix,
		Out:   &out,
		Locks: mutexPool,
	})
	if err != nil {
		diags.AddError("Remediation setup failed", err.Error())
		return result, diags
	}

	result = controller.RunHost(ctx, host)
	tflog.Debug(ctx, "boot_order: remediation output", map[string]interface{}{"output": out.String()})

	for _, warning := range result.Warnings {
		diags.AddWarning("Host reset failed", fmt.Sprintf("The boot order has been written but the host has not been reset: %s", warning))
	}

	return result, diags
}

func (r *BootOrderResource) applyBootOrder(ctx context.Context, model *models.BootOrderResourceModel) (diags diag.Diagnostics) {
	result, diags := r.runBootOrder(ctx, model, true)
	if diags.HasError() {
		return diags
	}

	if result.Outcome.Fatal() {
		diags.AddError("Boot order remediation failed", result.Err.Error())
		return diags
	}

	final := result.Current
	if result.Outcome == remediation.OutcomeFixed {
		final = result.Planned
	}

	bootOrder, listDiags := orderToList(final)
	diags.Append(listDiags...)
	if diags.HasError() {
		return diags
	}

	model.Id = types.StringValue(result.Host)
	model.BootOrder = bootOrder
	model.Compliant = types.BoolValue(true)
	model.Outcome = types.StringValue(string(result.Outcome))

	return diags
}

func (r *BootOrderResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	tflog.Info(ctx, "boot_order: create starts")

	// Read Terraform plan data into the model
	var plan models.BootOrderResourceModel
	diags := req.Plan.Get(ctx, &plan)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(r.applyBootOrder(ctx, &plan)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &plan)...)
	tflog.Info(ctx, "boot_order: create ends")
}

func (r *BootOrderResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	tflog.Info(ctx, "boot_order: read starts")

	// Read Terraform prior state data into the model
	var state models.BootOrderResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	result, diags := r.runBootOrder(ctx, &state, false)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	switch {
	case result.Outcome == remediation.OutcomeNonCompliant:
		// Drifted out of compliance, the next plan creates the resource again.
		tflog.Warn(ctx, "boot_order: boot order is not compliant anymore, removing resource from state")
		resp.State.RemoveResource(ctx)
		return
	case result.Outcome.Fatal():
		resp.Diagnostics.AddError("Unable to read boot order", result.Err.Error())
		return
	}

	bootOrder, diags := orderToList(result.Current)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	state.BootOrder = bootOrder
	state.Compliant = types.BoolValue(true)

	// Save updated data into Terraform state
	resp.Diagnostics.Append(resp.State.Set(ctx, &state)...)
	tflog.Info(ctx, "boot_order: read ends")
}

func (r *BootOrderResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	tflog.Info(ctx, "boot_order: update starts")

	// Read Terraform plan
	var plan models.BootOrderResourceModel
	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(r.applyBootOrder(ctx, &plan)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &plan)...)
	tflog.Info(ctx, "boot_order: update ends")
}

func (r *BootOrderResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	tflog.Info(ctx, "boot_order: delete starts")
	resp.State.RemoveResource(ctx)
	tflog.Info(ctx, "boot_order: delete ends")
}
