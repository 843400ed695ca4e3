// Package manifest reads and writes package.json files.
//
// A [Document] keeps the top-level keys in file order and stores every value
// as raw JSON, so fields typesync does not understand are written back
// untouched. [WriteFile] re-reads the file it is about to replace to keep its
// indentation unit and trailing newline.
package manifest
