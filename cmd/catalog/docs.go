package main

// @title Catalog Service API
// @version 1.0
// @description Product type conversion, bundle composition and merged channel listings with derived stock
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8081
// @BasePath /

// @tag.name Products
// @tag.description Product lifecycle

// @tag.name Conversions
// @tag.description Product type conversion

// @tag.name Stock
// @tag.description Stock edits

// @tag.name Channels
// @tag.description Sales channel listings

// @tag.name Bundles
// @tag.description Bundle composition and derived availability

// @tag.name Merges
// @tag.description Merged channel listings
