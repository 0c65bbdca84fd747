package models

import (
	"github.com/hashicorp/terraform-plugin-framework/types"
)

// BootOrderRules overrides the substrings identifying the boot entries.
type BootOrderRules struct {
	Network types.String `tfsdk:"network"`
	Disk    types.String `tfsdk:"disk"`
	Shell   types.String `tfsdk:"shell"`
}

// BootOrderResourceModel describes the resource data model.
type BootOrderResourceModel struct {
	Id                 types.String    `tfsdk:"id"`
	RedfishServer      []RedfishServer `tfsdk:"server"`
	Rules              *BootOrderRules `tfsdk:"rules"`
	Profile            types.String    `tfsdk:"profile"`
	OemPath            types.String    `tfsdk:"oem_path"`
	OemKey             types.String    `tfsdk:"oem_key"`
	SystemResetType    types.String    `tfsdk:"system_reset_type"`
	SystemResetTimeout types.Int64     `tfsdk:"system_reset_timeout"`
	BootOrder          types.List      `tfsdk:"boot_order"`
	Compliant          types.Bool      `tfsdk:"compliant"`
	Outcome            types.String    `tfsdk:"outcome"`
}

// BootOrderDataSourceModel describes the data source data model.
type BootOrderDataSourceModel struct {
	Id            types.String    `tfsdk:"id"`
	RedfishServer []RedfishServer `tfsdk:"server"`
	Rules         *BootOrderRules `tfsdk:"rules"`
	Profile       types.String    `tfsdk:"profile"`
	OemPath       types.String    `tfsdk:"oem_path"`
	OemKey        types.String    `tfsdk:"oem_key"`
	BootOrder     types.List      `tfsdk:"boot_order"`
	Positions     types.Map       `tfsdk:"positions"`
	Compliant     types.Bool      `tfsdk:"compliant"`
	PlannedOrder  types.List      `tfsdk:"planned_order"`
}
