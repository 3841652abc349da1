// Package probe reads image headers without decoding pixel data. The
// analyze report and the check diagnostics use it to describe inputs
// cheaply.
package probe
