package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Volcano Platform API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Volcano Platform API",
			"description": "Chart service joining GEOROC rock-chemistry samples with the GVP eruption record",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Volcano Platform Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/charts": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get chart data",
					"description": "Run the name-resolution, date-matching and join pipeline for one volcano and return the chemistry scatters plus the eruption chronogram",
					"parameters": []map[string]interface{}{
						{
							"name":        "volcano",
							"in":          "query",
							"description": "Raw sample-collection volcano name, or \"start\" for no selection",
							"required":    false,
							"schema":      map[string]interface{}{"type": "string", "default": "start"},
						},
						{
							"name":        "date",
							"in":          "query",
							"description": "Eruption date selector (\"1883\" or \"1883-8\"), or \"all\"",
							"required":    false,
							"schema":      map[string]interface{}{"type": "string", "default": "all"},
						},
						{
							"name":        "period",
							"in":          "query",
							"description": "Chronogram period: BC, before1679 or from1679",
							"required":    false,
							"schema": map[string]interface{}{
								"type":    "string",
								"enum":    []string{"BC", "before1679", "from1679"},
								"default": "from1679",
							},
						},
						{
							"name":        "overlay",
							"in":          "query",
							"description": "Superimpose per-rock-class chemistry series on the chronogram",
							"required":    false,
							"schema":      map[string]interface{}{"type": "boolean", "default": true},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"full_chemistry": map[string]interface{}{
												"type":  "array",
												"items": chemistrySeriesSchema(),
											},
											"joined_chemistry": map[string]interface{}{
												"type":  "array",
												"items": chemistrySeriesSchema(),
											},
											"chronogram": map[string]interface{}{
												"type": "object",
												"properties": map[string]interface{}{
													"period": map[string]string{"type": "string"},
													"axis":   map[string]interface{}{"type": "string", "enum": []string{"date", "year"}},
													"vei_series": map[string]interface{}{
														"type": "array",
														"items": map[string]interface{}{
															"type": "object",
															"properties": map[string]interface{}{
																"date":  map[string]string{"type": "string"},
																"year":  map[string]string{"type": "integer"},
																"vei":   map[string]string{"type": "number"},
																"known": map[string]string{"type": "boolean"},
															},
														},
													},
													"overlays": map[string]interface{}{
														"type": "array",
														"items": map[string]interface{}{
															"type": "object",
															"properties": map[string]interface{}{
																"rock_class": map[string]string{"type": "string"},
																"name":       map[string]string{"type": "string"},
																"points": map[string]interface{}{
																	"type": "array",
																	"items": map[string]interface{}{
																		"type": "object",
																		"properties": map[string]interface{}{
																			"date":  map[string]string{"type": "string"},
																			"year":  map[string]string{"type": "integer"},
																			"value": map[string]string{"type": "number"},
																		},
																	},
																},
															},
														},
													},
												},
											},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/volcanoes": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List volcanoes",
					"description": "Sorted raw volcano names that have rock samples, for the name dropdown",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"volcanoes": map[string]interface{}{
												"type":  "array",
												"items": map[string]string{"type": "string"},
											},
											"total": map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/volcanoes/{name}/eruptions": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List eruption dates",
					"description": "Distinct sample eruption dates for one volcano, for the date dropdown; \"all\" is always the first option",
					"parameters": []map[string]interface{}{
						{
							"name":        "name",
							"in":          "path",
							"description": "Raw sample-collection volcano name",
							"required":    true,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"volcano": map[string]string{"type": "string"},
											"dates": map[string]interface{}{
												"type":  "array",
												"items": map[string]string{"type": "string"},
											},
										},
									},
								},
							},
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

// chemistrySeriesSchema is the shared schema for the TAS scatter series
func chemistrySeriesSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"rock_class": map[string]string{"type": "string"},
			"points": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"silica":       map[string]string{"type": "number"},
						"total_alkali": map[string]string{"type": "number"},
						"vei":          map[string]interface{}{"type": "number", "nullable": true},
					},
				},
			},
		},
	}
}
