package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// RoundsEndpoint is the endpoint for creating and listing funding rounds
	RoundsEndpoint = "/rounds"
	// RoundEndpoint is the endpoint to get the round info
	RoundURLParam = "roundId"
	RoundEndpoint = "/rounds/{" + RoundURLParam + "}"
	// TopUpEndpoint is the endpoint for topping up the matching pool
	TopUpEndpoint = RoundEndpoint + "/topup"
	// MatchingEndpoint is the endpoint for computing the matching of an
	// ended round
	MatchingEndpoint = RoundEndpoint + "/matching"
	// FinalizeEndpoint is the endpoint for finalizing a matched round
	FinalizeEndpoint = RoundEndpoint + "/finalize"
	// DonationsEndpoint is the endpoint for submitting a donation
	DonationsEndpoint = RoundEndpoint + "/donations"
	// DonationBatchEndpoint is the endpoint for batch donations. It always
	// rejects: aggregating several encrypted inputs in one call is
	// unsupported.
	DonationBatchEndpoint = DonationsEndpoint + "/batch"
	// ContributionEndpoint is the endpoint to get the encrypted cumulative
	// contribution of a donor to a project
	DonorURLParam        = "donor"
	ProjectURLParam      = "project"
	ContributionEndpoint = RoundEndpoint + "/contributions/{" + DonorURLParam + "}/{" + ProjectURLParam + "}"
	// ProjectEndpoint is the endpoint to get the aggregate of a project
	ProjectEndpoint = RoundEndpoint + "/projects/{" + ProjectURLParam + "}"
	// EventsEndpoint is the endpoint to get the donation events of a round
	EventsEndpoint = RoundEndpoint + "/events"
	// AllocationsEndpoint is the endpoint to get the matching allocations of
	// a round
	AllocationsEndpoint = RoundEndpoint + "/allocations"
	// ClaimEndpoint is the endpoint for claiming a matching allocation
	ClaimEndpoint = AllocationsEndpoint + "/{" + ProjectURLParam + "}/claim"
)
