// Package rules loads correction rule documents into a domain.RuleSet.
//
// A document is a list of rules, read as JSON or, for .yaml and .yml files,
// as YAML. Each rule targets one column (target_column) or several
// (target_columns) and has exactly one shape:
//
//	{"target_column": "Market_brand", "replace_map": {"acme": "ACME", "Acme ": "ACME"}}
//	{"target_columns": ["Location"], "wrong_value": "Prag", "correct_value": "Praha",
//	 "match_column": "Serial_Number", "match_value": "SN-1"}
//
// replace_map entries keep their document order. A missing document yields
// an empty rule set; anything malformed is a CONFIG error naming the rule
// index.
package rules
