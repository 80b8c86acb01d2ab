package domain

// Collection names one of the fixed record sets shared by both backends.
type Collection string

const (
	CollectionDonors     Collection = "donors"
	CollectionRequests   Collection = "requests"
	CollectionAdmins     Collection = "admins"
	CollectionActivities Collection = "activities"
)

// Collections lists every collection in seeding order.
var Collections = []Collection{
	CollectionDonors,
	CollectionRequests,
	CollectionAdmins,
	CollectionActivities,
}

func (c Collection) String() string { return string(c) }

func (c Collection) Valid() bool {
	switch c {
	case CollectionDonors, CollectionRequests, CollectionAdmins, CollectionActivities:
		return true
	}
	return false
}
