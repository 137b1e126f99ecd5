package upstream

// Request body for the Firestore documents:runQuery endpoint.

type runQuery struct {
	StructuredQuery structuredQuery `json:"structuredQuery"`
}

type structuredQuery struct {
	From    []collectionSelector `json:"from"`
	OrderBy []order              `json:"orderBy"`
	Limit   int                  `json:"limit"`
}

type collectionSelector struct {
	CollectionID string `json:"collectionId"`
}

type order struct {
	Field     fieldReference `json:"field"`
	Direction string         `json:"direction"`
}

type fieldReference struct {
	FieldPath string `json:"fieldPath"`
}

func newRunQuery(collection, orderBy string, limit int) runQuery {
	return runQuery{
		StructuredQuery: structuredQuery{
			From: []collectionSelector{{CollectionID: collection}},
			OrderBy: []order{{
				Field:     fieldReference{FieldPath: orderBy},
				Direction: "DESCENDING",
			}},
			Limit: limit,
		},
	}
}
