package domain

// CampaignCreateInput represents the MCP tool input for campaign creation.
type CampaignCreateInput struct {
	OwnerSecret  string `json:"owner_secret" jsonschema:"base58 secret key of the campaign owner"`
	Nonce        uint64 `json:"nonce,omitempty" jsonschema:"owner-chosen nonce distinguishing campaigns of the same owner"`
	GoalLamports uint64 `json:"goal_lamports" jsonschema:"funding goal in lamports"`
	Deadline     string `json:"deadline" jsonschema:"RFC3339 deadline; contributions are accepted strictly before it"`
	Name         string `json:"name" jsonschema:"campaign name (1-100 bytes)"`
	Description  string `json:"description,omitempty" jsonschema:"campaign description (up to 500 bytes)"`
}

// CampaignCreateResult represents the MCP tool output for campaign creation.
type CampaignCreateResult struct {
	Campaign    string            `json:"campaign" jsonschema:"campaign address"`
	Escrow      string            `json:"escrow" jsonschema:"escrow address holding contributions"`
	Transaction TransactionResult `json:"transaction"`
}

// ContributeInput represents the MCP tool input for a contribution.
type ContributeInput struct {
	Campaign          string `json:"campaign" jsonschema:"campaign address"`
	ContributorSecret string `json:"contributor_secret" jsonschema:"base58 secret key of the contributor"`
	AmountLamports    uint64 `json:"amount_lamports" jsonschema:"amount to contribute in lamports"`
}

// ContributionActionInput represents refund and close_contribution input.
type ContributionActionInput struct {
	Campaign          string `json:"campaign" jsonschema:"campaign address"`
	ContributorSecret string `json:"contributor_secret" jsonschema:"base58 secret key of the contributor"`
}

// OwnerActionInput represents withdraw and close_campaign input.
type OwnerActionInput struct {
	Campaign    string `json:"campaign" jsonschema:"campaign address"`
	OwnerSecret string `json:"owner_secret" jsonschema:"base58 secret key of the campaign owner"`
}

// ResolveInput represents the MCP tool input for resolve_campaign.
type ResolveInput struct {
	Campaign    string `json:"campaign" jsonschema:"campaign address"`
	PayerSecret string `json:"payer_secret" jsonschema:"base58 secret key of any account signing the transaction"`
}

// ActionResult represents the MCP tool output of a campaign instruction.
type ActionResult struct {
	Campaign    string            `json:"campaign" jsonschema:"campaign address"`
	Transaction TransactionResult `json:"transaction"`
}

// CampaignGetInput represents the MCP tool input for reading a campaign.
type CampaignGetInput struct {
	Campaign string `json:"campaign" jsonschema:"campaign address"`
}

// CampaignResult is the readable form of a campaign record.
type CampaignResult struct {
	Address          string `json:"address" jsonschema:"campaign address"`
	Owner            string `json:"owner" jsonschema:"owner address"`
	Nonce            uint64 `json:"nonce"`
	Escrow           string `json:"escrow" jsonschema:"escrow address"`
	EscrowLamports   uint64 `json:"escrow_lamports" jsonschema:"escrow balance including its rent reserve"`
	GoalLamports     uint64 `json:"goal_lamports"`
	TotalRaised      uint64 `json:"total_raised"`
	TotalRefunded    uint64 `json:"total_refunded"`
	ContributorCount uint32 `json:"contributor_count"`
	Deadline         string `json:"deadline" jsonschema:"RFC3339 deadline"`
	Status           string `json:"status" jsonschema:"persisted status"`
	EffectiveStatus  string `json:"effective_status" jsonschema:"status resolved against the current time"`
	CreatedSlot      uint64 `json:"created_slot"`
	Name             string `json:"name"`
	Description      string `json:"description"`
}

// CampaignListInput represents the MCP tool input for listing campaigns.
type CampaignListInput struct {
	Owner    string `json:"owner,omitempty" jsonschema:"optional owner address filter"`
	PageSize int32  `json:"page_size,omitempty" jsonschema:"maximum campaigns to return (default 20, max 100)"`
	OrderBy  string `json:"order_by,omitempty" jsonschema:"address (default), deadline, or created_slot"`
}

// CampaignListResult represents the MCP tool output for listing campaigns.
type CampaignListResult struct {
	Campaigns []CampaignResult `json:"campaigns"`
}

// ContributionGetInput represents the MCP tool input for reading a contribution.
type ContributionGetInput struct {
	Campaign    string `json:"campaign" jsonschema:"campaign address"`
	Contributor string `json:"contributor" jsonschema:"contributor address"`
}

// ContributionResult is the readable form of a contribution record.
type ContributionResult struct {
	Address      string `json:"address" jsonschema:"contribution address"`
	Campaign     string `json:"campaign"`
	Contributor  string `json:"contributor"`
	Amount       uint64 `json:"amount"`
	Refunded     bool   `json:"refunded"`
	Claimed      bool   `json:"claimed"`
	CampaignSlot uint64 `json:"campaign_slot" jsonschema:"created slot of the campaign generation this record belongs to"`
}
